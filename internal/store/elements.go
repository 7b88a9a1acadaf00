package store

import (
	"math/rand/v2"

	"github.com/xaenox/problem-notes/internal/models"
)

func randomJitter() models.Position {
	return models.Position{X: rand.Float64() * 100, Y: rand.Float64() * 100}
}

// touchLocked refreshes the updatedAt of the element at idx and of the
// session.
func (s *Store) touchLocked(idx int) {
	e := &s.session.Elements[idx]
	e.UpdatedAt = s.stamp(e.UpdatedAt)
	s.session.UpdatedAt = s.stamp(s.session.UpdatedAt)
}

func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		if s.session.Index(id) < 0 {
			return id
		}
	}
}

// AddElement fills in id and timestamps, prepends the element to the
// session and returns the new id. It returns "" when there is no session
// or the element type is unknown; callers must not use that to detect
// failure.
func (s *Store) AddElement(e models.Element) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || !e.Type.Valid() {
		return ""
	}

	e = e.Clone()
	now := s.now()
	e.ID = s.uniqueIDLocked()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Type == models.TaskElement {
		for i := range e.Subtasks {
			if e.Subtasks[i].ID == "" {
				e.Subtasks[i].ID = s.newID()
			}
			if e.Subtasks[i].CreatedAt.IsZero() {
				e.Subtasks[i].CreatedAt = now
			}
		}
	}

	s.session.Elements = append([]models.Element{e}, s.session.Elements...)
	s.session.UpdatedAt = s.stamp(s.session.UpdatedAt)
	s.persistLocked()
	return e.ID
}

// UpdateElement merges patch onto the element with the given id. A
// children patch that would let a group reach itself is rejected.
func (s *Store) UpdateElement(id string, patch models.ElementPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	idx := s.session.Index(id)
	if idx < 0 {
		return
	}

	e := &s.session.Elements[idx]
	if e.Type == models.GroupElement && patch.Children != nil &&
		s.session.WouldCycle(id, *patch.Children) {
		return
	}

	patch.Apply(e)
	s.touchLocked(idx)
	s.persistLocked()
}

func (s *Store) MoveElement(id string, position models.Position) {
	s.UpdateElement(id, models.ElementPatch{Position: &position})
}

func (s *Store) ResizeElement(id string, size models.Size) {
	s.UpdateElement(id, models.ElementPatch{Size: &size})
}

// DeleteElement removes the element and strips its id from the children
// of every group, refreshing each group it touched.
func (s *Store) DeleteElement(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.Index(id) < 0 {
		return
	}
	s.deleteLocked(id)
	s.persistLocked()
}

func (s *Store) deleteLocked(id string) {
	kept := make([]models.Element, 0, len(s.session.Elements))
	for _, e := range s.session.Elements {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.session.Elements = kept

	for i := range s.session.Elements {
		e := &s.session.Elements[i]
		if e.Type != models.GroupElement || !e.HasChild(id) {
			continue
		}
		children := make([]string, 0, len(e.Children))
		for _, c := range e.Children {
			if c != id {
				children = append(children, c)
			}
		}
		e.Children = children
		e.UpdatedAt = s.stamp(e.UpdatedAt)
	}

	if s.selectedID == id {
		s.selectedID = ""
	}
	s.session.UpdatedAt = s.stamp(s.session.UpdatedAt)
}

// taskIndexLocked returns the index of the task with the given id, or -1
// when there is no session, no such element, or it is not a task.
func (s *Store) taskIndexLocked(taskID string) int {
	if s.session == nil {
		return -1
	}
	idx := s.session.Index(taskID)
	if idx < 0 || s.session.Elements[idx].Type != models.TaskElement {
		return -1
	}
	return idx
}

// AddSubTask appends a new open subtask to the task and returns its id,
// or "" when the task does not exist.
func (s *Store) AddSubTask(taskID, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndexLocked(taskID)
	if idx < 0 {
		return ""
	}

	sub := models.SubTask{
		ID:        s.newID(),
		Content:   content,
		CreatedAt: s.now(),
	}
	task := &s.session.Elements[idx]
	task.Subtasks = append(task.Subtasks, sub)
	s.touchLocked(idx)
	s.persistLocked()
	return sub.ID
}

func (s *Store) UpdateSubTask(taskID, subID string, patch models.SubTaskPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndexLocked(taskID)
	if idx < 0 {
		return
	}
	task := &s.session.Elements[idx]
	subIdx := task.SubTaskIndex(subID)
	if subIdx < 0 {
		return
	}

	patch.Apply(&task.Subtasks[subIdx])
	s.touchLocked(idx)
	s.persistLocked()
}

func (s *Store) DeleteSubTask(taskID, subID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndexLocked(taskID)
	if idx < 0 {
		return
	}
	task := &s.session.Elements[idx]
	subIdx := task.SubTaskIndex(subID)
	if subIdx < 0 {
		return
	}

	task.Subtasks = append(task.Subtasks[:subIdx:subIdx], task.Subtasks[subIdx+1:]...)
	s.touchLocked(idx)
	s.persistLocked()
}
