// Package shortcuts maps keyboard chords onto workspace actions.
package shortcuts

import (
	"math/rand/v2"
	"strings"

	"github.com/xaenox/problem-notes/internal/models"
)

type Action string

const (
	ActionNone        Action = ""
	ActionCreateNote  Action = "create-note"
	ActionCreateTask  Action = "create-task"
	ActionCreateLink  Action = "create-link"
	ActionFocusSearch Action = "focus-search"
	ActionClearSearch Action = "clear-search"
)

const (
	DefaultNoteContent = "# New note\n\nStart typing here..."
	DefaultTaskContent = "New task..."
	DefaultLinkContent = "New link"
	DefaultLinkURL     = "https://example.com"
	DefaultLinkTitle   = "Example"
)

// Key is a single key press. Name is the key value ("n", "/", "Escape").
// Typing is set when focus is inside an editable field.
type Key struct {
	Name   string
	Ctrl   bool
	Meta   bool
	Typing bool
}

// Actions is the part of the store the dispatcher drives.
type Actions interface {
	AddElement(e models.Element) string
	SetSearchQuery(query string)
}

// Focuser moves input focus to the search field.
type Focuser interface {
	FocusSearch()
}

type Dispatcher struct {
	actions Actions
	focuser Focuser
	random  func() float64
}

func NewDispatcher(actions Actions, focuser Focuser) *Dispatcher {
	return &Dispatcher{
		actions: actions,
		focuser: focuser,
		random:  rand.Float64,
	}
}

// Resolve returns the action bound to k, or ActionNone.
func Resolve(k Key) Action {
	if k.Typing {
		return ActionNone
	}

	name := strings.ToLower(k.Name)
	if k.Ctrl || k.Meta {
		switch name {
		case "n":
			return ActionCreateNote
		case "t":
			return ActionCreateTask
		case "l":
			return ActionCreateLink
		case "k":
			return ActionFocusSearch
		}
	}

	switch name {
	case "escape":
		return ActionClearSearch
	case "/":
		return ActionFocusSearch
	}
	return ActionNone
}

// Handle runs the action bound to k and reports whether one ran.
func (d *Dispatcher) Handle(k Key) bool {
	action := Resolve(k)
	switch action {
	case ActionCreateNote:
		d.actions.AddElement(models.Element{
			Type:     models.NoteElement,
			Content:  DefaultNoteContent,
			Position: d.spawnPosition(),
		})
	case ActionCreateTask:
		d.actions.AddElement(models.Element{
			Type:     models.TaskElement,
			Content:  DefaultTaskContent,
			Position: d.spawnPosition(),
		})
	case ActionCreateLink:
		d.actions.AddElement(models.Element{
			Type:     models.LinkElement,
			Content:  DefaultLinkContent,
			URL:      DefaultLinkURL,
			Title:    DefaultLinkTitle,
			Position: d.spawnPosition(),
		})
	case ActionFocusSearch:
		if d.focuser != nil {
			d.focuser.FocusSearch()
		}
	case ActionClearSearch:
		d.actions.SetSearchQuery("")
	case ActionNone:
		return false
	}
	return true
}

// spawnPosition places new elements somewhere in x in [200,500) and
// y in [150,350).
func (d *Dispatcher) spawnPosition() models.Position {
	return models.Position{
		X: d.random()*300 + 200,
		Y: d.random()*200 + 150,
	}
}
