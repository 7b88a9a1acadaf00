package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashtagClassifier(t *testing.T) {
	tests := []struct {
		name    string
		maxTags int
		content string
		want    []string
	}{
		{"none", 5, "just text", []string{}},
		{"order and case", 5, "Buy #Milk and #eggs, then #milk again", []string{"milk", "eggs"}},
		{"punctuation", 5, "see #todo. (#urgent)", []string{"todo"}},
		{"heading is not a tag", 5, "# Title\n\nbody #real", []string{"real"}},
		{"cap", 2, "#a #b #c", []string{"a", "b"}},
		{"no cap", 0, "#a #b #c", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewHashtagClassifier(tt.maxTags).ClassifyContent(tt.content))
		})
	}
}
