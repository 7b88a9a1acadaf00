package models

import (
	"errors"
	"fmt"
	"time"
)

// Session is the root aggregate; elements do not exist outside of one.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Elements  []Element `json:"elements"`
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Elements = make([]Element, len(s.Elements))
	for i, e := range s.Elements {
		c.Elements[i] = e.Clone()
	}
	return &c
}

// Validate reports whether the session has the shape every store
// operation relies on: an id and a name, and elements that each carry an
// id and a known type.
func (s *Session) Validate() error {
	if s.ID == "" || s.Name == "" {
		return errors.New("session needs an id and a name")
	}
	for i, e := range s.Elements {
		if e.ID == "" {
			return fmt.Errorf("element %d has no id", i)
		}
		if !e.Type.Valid() {
			return fmt.Errorf("element %s has unknown type %q", e.ID, e.Type)
		}
	}
	return nil
}

// Index returns the position of the element with the given id, or -1.
func (s *Session) Index(id string) int {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Reaches reports whether the group fromID can reach target by following
// children references. Visited groups are tracked, so cyclic documents
// terminate.
func (s *Session) Reaches(fromID, target string) bool {
	return s.reaches(fromID, target, nil)
}

// reaches is Reaches with an optional override of one group's children,
// used to test a pending children patch before applying it.
func (s *Session) reaches(fromID, target string, override map[string][]string) bool {
	byID := make(map[string]*Element, len(s.Elements))
	for i := range s.Elements {
		byID[s.Elements[i].ID] = &s.Elements[i]
	}

	children := func(id string) []string {
		if c, ok := override[id]; ok {
			return c
		}
		if e, ok := byID[id]; ok && e.Type == GroupElement {
			return e.Children
		}
		return nil
	}

	visited := map[string]bool{fromID: true}
	queue := []string{fromID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children(id) {
			if child == target {
				return true
			}
			if !visited[child] {
				visited[child] = true
				queue = append(queue, child)
			}
		}
	}
	return false
}

// WouldCycle reports whether giving groupID the children list would let
// the group reach itself.
func (s *Session) WouldCycle(groupID string, children []string) bool {
	return s.reaches(groupID, groupID, map[string][]string{groupID: children})
}

// Descendants returns the ids reachable from groupID through children,
// breadth first, each id once. Ids that do not resolve to an element are
// skipped.
func (s *Session) Descendants(groupID string) []string {
	byID := make(map[string]*Element, len(s.Elements))
	for i := range s.Elements {
		byID[s.Elements[i].ID] = &s.Elements[i]
	}

	var out []string
	visited := map[string]bool{groupID: true}
	queue := []string{groupID}
	for len(queue) > 0 {
		e, ok := byID[queue[0]]
		queue = queue[1:]
		if !ok || e.Type != GroupElement {
			continue
		}
		for _, child := range e.Children {
			if visited[child] {
				continue
			}
			visited[child] = true
			if _, ok := byID[child]; !ok {
				continue
			}
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}
