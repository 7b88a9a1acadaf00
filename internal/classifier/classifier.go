package classifier

import (
	"strings"
)

type Classifier interface {
	ClassifyContent(content string) []string
}

// HashtagClassifier suggests tags from the #hashtags written in content.
type HashtagClassifier struct {
	maxTags int
}

func NewHashtagClassifier(maxTags int) *HashtagClassifier {
	return &HashtagClassifier{
		maxTags: maxTags,
	}
}

// ClassifyContent returns the lowercased hashtags of content in order of
// first appearance, without duplicates, capped at maxTags. A zero or
// negative maxTags means no cap. Markdown headings ("# Title") are not
// hashtags.
func (c *HashtagClassifier) ClassifyContent(content string) []string {
	seen := make(map[string]struct{})
	tags := []string{}

	for _, word := range strings.Fields(content) {
		if !strings.HasPrefix(word, "#") {
			continue
		}
		tag := strings.ToLower(strings.TrimLeft(word, "#"))
		tag = strings.TrimRight(tag, ".,;:!?)]}\"'")
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)

		if c.maxTags > 0 && len(tags) == c.maxTags {
			break
		}
	}

	return tags
}
