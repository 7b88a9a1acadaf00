package store

import (
	"strings"

	"github.com/xaenox/problem-notes/internal/models"
)

// State is a snapshot of the non-session part of the store.
type State struct {
	HasSession  bool
	SessionName string
	SearchQuery string
	SelectedID  string
	DarkMode    bool
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		HasSession:  s.session != nil,
		SearchQuery: s.searchQuery,
		SelectedID:  s.selectedID,
		DarkMode:    s.darkMode,
	}
	if s.session != nil {
		st.SessionName = s.session.Name
	}
	return st
}

// Element returns a copy of the element with the given id.
func (s *Store) Element(id string) (models.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return models.Element{}, false
	}
	idx := s.session.Index(id)
	if idx < 0 {
		return models.Element{}, false
	}
	return s.session.Elements[idx].Clone(), true
}

func (s *Store) SelectedElement() (models.Element, bool) {
	s.mu.Lock()
	id := s.selectedID
	s.mu.Unlock()

	if id == "" {
		return models.Element{}, false
	}
	return s.Element(id)
}

// Matches reports whether e matches the search query: a case-insensitive
// substring of the content or of any tag, and for links also of the url
// or title. The empty query matches everything.
func Matches(e models.Element, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }

	if contains(e.Content) {
		return true
	}
	for _, tag := range e.Tags {
		if contains(tag) {
			return true
		}
	}

	switch e.Type {
	case models.LinkElement:
		return contains(e.URL) || contains(e.Title)
	case models.NoteElement, models.TaskElement, models.GroupElement:
		return false
	default:
		return false
	}
}

// FilteredElements returns copies of the session's elements that match
// the current search query, in session order.
func (s *Store) FilteredElements() []models.Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	out := make([]models.Element, 0, len(s.session.Elements))
	for _, e := range s.session.Elements {
		if Matches(e, s.searchQuery) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// GroupChildren returns the elements referenced by the group, in session
// order. Dangling references are skipped.
func (s *Store) GroupChildren(groupID string) []models.Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	idx := s.session.Index(groupID)
	if idx < 0 || s.session.Elements[idx].Type != models.GroupElement {
		return nil
	}

	group := s.session.Elements[idx]
	var out []models.Element
	for _, e := range s.session.Elements {
		if group.HasChild(e.ID) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Counts returns the number of elements of each type.
func (s *Store) Counts() map[models.ElementType]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[models.ElementType]int, len(models.ElementTypes))
	for _, t := range models.ElementTypes {
		counts[t] = 0
	}
	if s.session == nil {
		return counts
	}
	for _, e := range s.session.Elements {
		counts[e.Type]++
	}
	return counts
}

// TaskProgress reports the subtask totals of a task. ok is false when the
// id does not name a task.
func (s *Store) TaskProgress(taskID string) (total, completed int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndexLocked(taskID)
	if idx < 0 {
		return 0, 0, false
	}
	total, completed = s.session.Elements[idx].Progress()
	return total, completed, true
}
