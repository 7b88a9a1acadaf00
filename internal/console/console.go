// Package console is a line-oriented front end for the workspace store.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/xaenox/problem-notes/internal/classifier"
	"github.com/xaenox/problem-notes/internal/models"
	"github.com/xaenox/problem-notes/internal/shortcuts"
	"github.com/xaenox/problem-notes/internal/store"
)

// LineReader is satisfied by *readline.Instance.
type LineReader interface {
	Readline() (string, error)
}

type Settings struct {
	DragInterval time.Duration
	ExportDir    string
}

type Console struct {
	store      *store.Store
	classifier classifier.Classifier
	settings   Settings
	keys       *shortcuts.Dispatcher
	out        io.Writer
	logger     *zap.Logger

	now   func() time.Time
	spawn func() models.Position
}

var (
	errNoSession = errors.New("no active session, start one with: new <name>")
	errQuit      = errors.New("quit")
)

func New(st *store.Store, clf classifier.Classifier, settings Settings, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.ExportDir == "" {
		settings.ExportDir = "."
	}
	c := &Console{
		store:      st,
		classifier: clf,
		settings:   settings,
		out:        out,
		logger:     logger,
		now:        time.Now,
		spawn:      spawnPosition,
	}
	c.keys = shortcuts.NewDispatcher(st, c)
	return c
}

// FocusSearch is what the search shortcuts do on a line console.
func (c *Console) FocusSearch() {
	c.printf("search with: find <query>\n")
}

func spawnPosition() models.Position {
	return models.Position{
		X: rand.Float64()*300 + 200,
		Y: rand.Float64()*200 + 150,
	}
}

// Run reads commands until quit, end of input or ctx is done.
// Ctrl-C on an empty line is ignored.
func (c *Console) Run(ctx context.Context, in LineReader) error {
	c.printf("problem notes. Type help for the command list.\n")
	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		if quit := c.Execute(line); quit {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the console should
// stop. Command errors are printed, never returned.
func (c *Console) Execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	name, rest, _ := strings.Cut(line, " ")
	err := c.handleCommand(strings.ToLower(name), strings.TrimSpace(rest))
	if errors.Is(err, errQuit) {
		return true
	}
	if err != nil {
		c.printf("error: %v\n", err)
	}
	return false
}

func (c *Console) handleCommand(name, args string) error {
	switch name {
	case "help", "?":
		return c.handleHelp()
	case "quit", "exit":
		return errQuit
	case "new":
		return c.handleNew(args)
	case "note":
		return c.handleCreate(models.NoteElement, args)
	case "task":
		return c.handleCreate(models.TaskElement, args)
	case "link":
		return c.handleLink(args)
	case "group":
		return c.handleCreate(models.GroupElement, args)
	case "edit":
		return c.handleEdit(args)
	case "url":
		return c.handleURL(args)
	case "desc":
		return c.handleDescription(args)
	case "tag":
		return c.handleTag(args)
	case "untag":
		return c.handleUntag(args)
	case "color":
		return c.handleColor(args)
	case "move":
		return c.handleMove(args)
	case "resize":
		return c.handleResize(args)
	case "drag":
		return c.handleDrag(args)
	case "done":
		return c.handleDone(args)
	case "priority":
		return c.handlePriority(args)
	case "sub":
		return c.handleSubAdd(args)
	case "subdone":
		return c.handleSubDone(args)
	case "subedit":
		return c.handleSubEdit(args)
	case "subrm":
		return c.handleSubDelete(args)
	case "add-child":
		return c.handleAddChild(args)
	case "remove-child":
		return c.handleRemoveChild(args)
	case "collapse":
		return c.handleCollapse(args)
	case "rm":
		return c.handleDelete(args)
	case "rmgroup":
		return c.handleDeleteGroup(args)
	case "select":
		return c.handleSelect(args)
	case "find":
		return c.handleFind(args)
	case "ls":
		return c.handleList()
	case "show":
		return c.handleShow(args)
	case "export":
		return c.handleExport()
	case "import":
		return c.handleImport(args)
	case "dark":
		return c.handleDark()
	case "clear":
		return c.handleClear()
	case "info":
		return c.handleInfo()
	case "key":
		return c.handleKey(args)
	default:
		return fmt.Errorf("unknown command %q, type help for the command list", name)
	}
}

func (c *Console) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(c.out, format, args...); err != nil {
		c.logger.Error("Failed to write console output", zap.Error(err))
	}
}

// elements returns the current session's elements or errNoSession.
func (c *Console) elements() ([]models.Element, error) {
	session := c.store.ExportSession()
	if session == nil {
		return nil, errNoSession
	}
	return session.Elements, nil
}

// resolve finds the element whose id equals ref or, failing that, is the
// only one starting with ref.
func (c *Console) resolve(ref string) (models.Element, error) {
	elements, err := c.elements()
	if err != nil {
		return models.Element{}, err
	}
	if ref == "" {
		return models.Element{}, errors.New("missing element id")
	}

	var matches []models.Element
	for _, e := range elements {
		if e.ID == ref {
			return e, nil
		}
		if strings.HasPrefix(e.ID, ref) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return models.Element{}, fmt.Errorf("no element matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Element{}, fmt.Errorf("%q is ambiguous (%d elements)", ref, len(matches))
	}
}

func (c *Console) resolveType(ref string, want models.ElementType) (models.Element, error) {
	e, err := c.resolve(ref)
	if err != nil {
		return e, err
	}
	if e.Type != want {
		return e, fmt.Errorf("%s is a %s, not a %s", shortID(e.ID), e.Type, want)
	}
	return e, nil
}

func resolveSubTask(task models.Element, ref string) (models.SubTask, error) {
	var matches []models.SubTask
	for _, sub := range task.Subtasks {
		if sub.ID == ref {
			return sub, nil
		}
		if ref != "" && strings.HasPrefix(sub.ID, ref) {
			matches = append(matches, sub)
		}
	}
	switch len(matches) {
	case 0:
		return models.SubTask{}, fmt.Errorf("task %s has no subtask %q", shortID(task.ID), ref)
	case 1:
		return matches[0], nil
	default:
		return models.SubTask{}, fmt.Errorf("subtask %q is ambiguous", ref)
	}
}

// splitArgs peels n whitespace-separated words off args and returns them
// with the untouched remainder.
func splitArgs(args string, n int) ([]string, string) {
	words := make([]string, 0, n)
	rest := strings.TrimSpace(args)
	for len(words) < n && rest != "" {
		word, tail, _ := strings.Cut(rest, " ")
		words = append(words, word)
		rest = strings.TrimSpace(tail)
	}
	return words, rest
}

// unescape turns the two-character sequence \n into a newline so
// multi-line content fits on one command line.
func unescape(text string) string {
	return strings.ReplaceAll(text, `\n`, "\n")
}

// parseChord reads "ctrl+n", "cmd+k", "/" or "escape".
func parseChord(chord string) (shortcuts.Key, error) {
	var key shortcuts.Key
	parts := strings.Split(strings.ToLower(strings.TrimSpace(chord)), "+")
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "ctrl", "control":
			key.Ctrl = true
		case "cmd", "meta", "super":
			key.Meta = true
		default:
			return key, fmt.Errorf("unknown modifier %q", mod)
		}
	}

	key.Name = parts[len(parts)-1]
	if key.Name == "esc" {
		key.Name = "escape"
	}
	if key.Name == "" {
		return key, errors.New("usage: key <chord>")
	}
	return key, nil
}

func (c *Console) handleKey(args string) error {
	key, err := parseChord(args)
	if err != nil {
		return err
	}
	switch shortcuts.Resolve(key) {
	case shortcuts.ActionCreateNote, shortcuts.ActionCreateTask, shortcuts.ActionCreateLink:
		if _, err := c.elements(); err != nil {
			return err
		}
	}
	if !c.keys.Handle(key) {
		return fmt.Errorf("%q is not bound", args)
	}
	return nil
}
