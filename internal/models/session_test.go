package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func groupSession() *Session {
	return &Session{
		ID:   "s",
		Name: "groups",
		Elements: []Element{
			{ID: "g1", Type: GroupElement, Children: []string{"g2", "n1"}},
			{ID: "g2", Type: GroupElement, Children: []string{"n2", "missing"}},
			{ID: "n1", Type: NoteElement},
			{ID: "n2", Type: NoteElement},
		},
	}
}

func TestSession_Reaches(t *testing.T) {
	s := groupSession()

	assert.True(t, s.Reaches("g1", "n2"))
	assert.False(t, s.Reaches("g2", "n1"))
	assert.False(t, s.Reaches("n1", "g1"))
}

func TestSession_WouldCycle(t *testing.T) {
	s := groupSession()

	assert.True(t, s.WouldCycle("g2", []string{"g1"}))
	assert.True(t, s.WouldCycle("g1", []string{"g1"}))
	assert.False(t, s.WouldCycle("g2", []string{"n1"}))
}

func TestSession_DescendantsTerminatesOnCycles(t *testing.T) {
	s := groupSession()
	s.Elements[1].Children = append(s.Elements[1].Children, "g1")

	assert.ElementsMatch(t, []string{"g2", "n1", "n2"}, s.Descendants("g1"))
}

func TestSession_CloneIsDeep(t *testing.T) {
	s := groupSession()
	c := s.Clone()
	c.Elements[0].Children[0] = "changed"
	c.Name = "other"

	assert.Equal(t, "g2", s.Elements[0].Children[0])
	assert.Equal(t, "groups", s.Name)
	assert.Nil(t, (*Session)(nil).Clone())
}

func TestSession_Validate(t *testing.T) {
	assert.NoError(t, groupSession().Validate())
	assert.NoError(t, (&Session{ID: "s", Name: "empty"}).Validate())

	tests := map[string]*Session{
		"missing id":   {Name: "n"},
		"missing name": {ID: "s"},
		"element id":   {ID: "s", Name: "n", Elements: []Element{{Type: NoteElement}}},
		"unknown type": {ID: "s", Name: "n", Elements: []Element{{ID: "w", Type: "widget"}}},
		"empty type":   {ID: "s", Name: "n", Elements: []Element{{ID: "e"}}},
	}
	for name, s := range tests {
		assert.Error(t, s.Validate(), name)
	}
}
