package models

// ElementPatch holds the fields to merge onto an element. A nil field is
// left untouched. Variant fields are only applied to elements of the
// matching type. The id, type and creation time are not patchable.
type ElementPatch struct {
	Content  *string
	Tags     *[]string
	Position *Position
	Size     *Size
	Color    *string

	Done     *bool
	Priority *Priority
	Subtasks *[]SubTask

	URL         *string
	Title       *string
	Description *string

	Children  *[]string
	Collapsed *bool
}

// Apply merges the patch onto e.
func (p ElementPatch) Apply(e *Element) {
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.Tags != nil {
		e.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Position != nil {
		e.Position = *p.Position
	}
	if p.Size != nil {
		size := *p.Size
		e.Size = &size
	}
	if p.Color != nil {
		e.Color = *p.Color
	}

	switch e.Type {
	case TaskElement:
		if p.Done != nil {
			e.Done = *p.Done
		}
		if p.Priority != nil {
			e.Priority = *p.Priority
		}
		if p.Subtasks != nil {
			e.Subtasks = append([]SubTask{}, (*p.Subtasks)...)
		}
	case LinkElement:
		if p.URL != nil {
			e.URL = *p.URL
		}
		if p.Title != nil {
			e.Title = *p.Title
		}
		if p.Description != nil {
			e.Description = *p.Description
		}
	case GroupElement:
		if p.Children != nil {
			e.Children = append([]string{}, (*p.Children)...)
		}
		if p.Collapsed != nil {
			e.Collapsed = *p.Collapsed
		}
	}
}

// SubTaskPatch holds the mutable subtask fields. CreatedAt is fixed at
// creation.
type SubTaskPatch struct {
	Content *string
	Done    *bool
}

func (p SubTaskPatch) Apply(st *SubTask) {
	if p.Content != nil {
		st.Content = *p.Content
	}
	if p.Done != nil {
		st.Done = *p.Done
	}
}

// Ptr returns a pointer to v. It keeps patch literals short.
func Ptr[T any](v T) *T {
	return &v
}
