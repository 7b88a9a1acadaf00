package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type ElementType string

const (
	NoteElement  ElementType = "note"
	TaskElement  ElementType = "task"
	LinkElement  ElementType = "link"
	GroupElement ElementType = "group"
)

// ElementTypes lists every element discriminant in display order.
var ElementTypes = []ElementType{NoteElement, TaskElement, LinkElement, GroupElement}

func (t ElementType) Valid() bool {
	switch t {
	case NoteElement, TaskElement, LinkElement, GroupElement:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Next cycles none -> low -> medium -> high -> none.
func (p Priority) Next() Priority {
	switch p {
	case PriorityNone:
		return PriorityLow
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityNone
	}
}

// Position is a canvas coordinate. It is never clamped.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SubTask belongs to exactly one task and has no lifecycle of its own.
type SubTask struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
}

// Element is a tagged variant over notes, tasks, links and groups.
// Type selects which of the variant fields are meaningful; the others
// are ignored and never serialized.
type Element struct {
	ID        string
	Type      ElementType
	Content   string
	Tags      []string
	Position  Position
	Size      *Size
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// task
	Done     bool
	Priority Priority
	Subtasks []SubTask

	// link
	URL         string
	Title       string
	Description string

	// group
	Children  []string
	Collapsed bool
}

type elementJSON struct {
	ID        string      `json:"id"`
	Type      ElementType `json:"type"`
	Content   string      `json:"content"`
	Tags      []string    `json:"tags"`
	Position  Position    `json:"position"`
	Size      *Size       `json:"size,omitempty"`
	Color     string      `json:"color,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`

	Done     *bool      `json:"done,omitempty"`
	Priority Priority   `json:"priority,omitempty"`
	Subtasks *[]SubTask `json:"subtasks,omitempty"`

	URL         *string `json:"url,omitempty"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`

	Children  *[]string `json:"children,omitempty"`
	Collapsed *bool     `json:"collapsed,omitempty"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	out := elementJSON{
		ID:        e.ID,
		Type:      e.Type,
		Content:   e.Content,
		Tags:      e.Tags,
		Position:  e.Position,
		Size:      e.Size,
		Color:     e.Color,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}

	switch e.Type {
	case NoteElement:
	case TaskElement:
		done := e.Done
		subtasks := e.Subtasks
		if subtasks == nil {
			subtasks = []SubTask{}
		}
		out.Done = &done
		out.Priority = e.Priority
		out.Subtasks = &subtasks
	case LinkElement:
		url := e.URL
		out.URL = &url
		out.Title = e.Title
		out.Description = e.Description
	case GroupElement:
		children := e.Children
		if children == nil {
			children = []string{}
		}
		collapsed := e.Collapsed
		out.Children = &children
		out.Collapsed = &collapsed
	default:
		return nil, fmt.Errorf("unknown element type %q", e.Type)
	}

	return json.Marshal(out)
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var in elementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*e = Element{
		ID:          in.ID,
		Type:        in.Type,
		Content:     in.Content,
		Tags:        in.Tags,
		Position:    in.Position,
		Size:        in.Size,
		Color:       in.Color,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
		Priority:    in.Priority,
		Title:       in.Title,
		Description: in.Description,
	}
	if in.Done != nil {
		e.Done = *in.Done
	}
	if in.Subtasks != nil {
		e.Subtasks = *in.Subtasks
	}
	if in.URL != nil {
		e.URL = *in.URL
	}
	if in.Children != nil {
		e.Children = *in.Children
	}
	if in.Collapsed != nil {
		e.Collapsed = *in.Collapsed
	}
	e.normalize()
	return nil
}

// normalize replaces nil sequences with empty ones so that consumers
// never need to tell "absent" from "empty".
func (e *Element) normalize() {
	if e.Tags == nil {
		e.Tags = []string{}
	}
	switch e.Type {
	case TaskElement:
		if e.Subtasks == nil {
			e.Subtasks = []SubTask{}
		}
	case GroupElement:
		if e.Children == nil {
			e.Children = []string{}
		}
	}
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	c := e
	c.Tags = append([]string(nil), e.Tags...)
	if e.Size != nil {
		size := *e.Size
		c.Size = &size
	}
	if e.Subtasks != nil {
		c.Subtasks = append([]SubTask(nil), e.Subtasks...)
	}
	if e.Children != nil {
		c.Children = append([]string(nil), e.Children...)
	}
	c.normalize()
	return c
}

func (e Element) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (e Element) HasChild(id string) bool {
	for _, c := range e.Children {
		if c == id {
			return true
		}
	}
	return false
}

// SubTaskIndex returns the position of the subtask with the given id, or -1.
func (e Element) SubTaskIndex(id string) int {
	for i, st := range e.Subtasks {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// Progress reports how many subtasks the task has and how many are done.
func (e Element) Progress() (total, completed int) {
	for _, st := range e.Subtasks {
		if st.Done {
			completed++
		}
	}
	return len(e.Subtasks), completed
}
