package store

import "github.com/xaenox/problem-notes/internal/models"

// AddToGroup appends childID to the group's children. Both elements must
// exist, the child must not already be a member, and the group must not
// end up reaching itself.
func (s *Store) AddToGroup(groupID, childID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || groupID == childID || s.session.Index(childID) < 0 {
		return
	}
	idx := s.session.Index(groupID)
	if idx < 0 {
		return
	}
	group := &s.session.Elements[idx]
	if group.Type != models.GroupElement || group.HasChild(childID) {
		return
	}

	children := append(append([]string{}, group.Children...), childID)
	if s.session.WouldCycle(groupID, children) {
		return
	}

	group.Children = children
	s.touchLocked(idx)
	s.persistLocked()
}

func (s *Store) RemoveFromGroup(groupID, childID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	idx := s.session.Index(groupID)
	if idx < 0 {
		return
	}
	group := &s.session.Elements[idx]
	if group.Type != models.GroupElement || !group.HasChild(childID) {
		return
	}

	children := make([]string, 0, len(group.Children))
	for _, c := range group.Children {
		if c != childID {
			children = append(children, c)
		}
	}
	group.Children = children
	s.touchLocked(idx)
	s.persistLocked()
}

// DeleteGroup scatters the group's direct children around the group's
// position and then deletes the group.
func (s *Store) DeleteGroup(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	idx := s.session.Index(groupID)
	if idx < 0 || s.session.Elements[idx].Type != models.GroupElement {
		return
	}

	origin := s.session.Elements[idx].Position
	for _, childID := range s.session.Elements[idx].Children {
		childIdx := s.session.Index(childID)
		if childIdx < 0 || childID == groupID {
			continue
		}
		offset := s.jitter()
		s.session.Elements[childIdx].Position = models.Position{
			X: origin.X + offset.X,
			Y: origin.Y + offset.Y,
		}
		s.touchLocked(childIdx)
	}

	s.deleteLocked(groupID)
	s.persistLocked()
}
