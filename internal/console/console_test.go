package console

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/problem-notes/internal/classifier"
	"github.com/xaenox/problem-notes/internal/models"
	"github.com/xaenox/problem-notes/internal/session"
	"github.com/xaenox/problem-notes/internal/storage"
	"github.com/xaenox/problem-notes/internal/store"
)

var exportTime = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

// scriptReader replays lines, then reports end of input.
type scriptReader struct {
	lines []string
	errs  map[int]error
	calls int
}

func (r *scriptReader) Readline() (string, error) {
	defer func() { r.calls++ }()
	if err, ok := r.errs[r.calls]; ok {
		return "", err
	}
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func newTestConsole(t *testing.T) (*Console, *store.Store, *bytes.Buffer) {
	t.Helper()
	st := store.New(storage.NewMemoryStorage(), store.WithIDGenerator(sequentialIDs()))
	out := &bytes.Buffer{}
	c := New(st, classifier.NewHashtagClassifier(5), Settings{
		DragInterval: time.Hour,
		ExportDir:    t.TempDir(),
	}, out, nil)
	c.now = func() time.Time { return exportTime }
	c.spawn = func() models.Position { return models.Position{X: 300, Y: 200} }
	return c, st, out
}

func run(c *Console, lines ...string) {
	for _, line := range lines {
		c.Execute(line)
	}
}

func TestConsole_TaskWorkflow(t *testing.T) {
	c, st, out := newTestConsole(t)

	run(c,
		"new Groceries",
		"task Buy milk #shopping",
		"sub id-002 Whole milk",
		"subdone id-002 id-003",
		"done id-002",
		"priority id-002",
		"ls",
	)

	task, ok := st.Element("id-002")
	require.True(t, ok)
	assert.Equal(t, "Buy milk #shopping", task.Content)
	assert.Equal(t, []string{"shopping"}, task.Tags)
	assert.True(t, task.Done)
	assert.Equal(t, models.PriorityLow, task.Priority)
	require.Len(t, task.Subtasks, 1)
	assert.True(t, task.Subtasks[0].Done)
	assert.Equal(t, models.Position{X: 300, Y: 200}, task.Position)

	assert.Contains(t, out.String(), "[x] 1/1 !low #shopping")
	assert.NotContains(t, out.String(), "error:")
}

func TestConsole_RequiresSession(t *testing.T) {
	c, st, out := newTestConsole(t)

	run(c, "note hello", "ls", "export")

	assert.Nil(t, st.ExportSession())
	assert.Equal(t, 3, bytes.Count(out.Bytes(), []byte(errNoSession.Error())))
}

func TestConsole_ResolvesPrefixes(t *testing.T) {
	c, st, out := newTestConsole(t)
	run(c, "new Work", "note first", "note second")

	run(c, "rm id-00")
	assert.Contains(t, out.String(), `"id-00" is ambiguous`)
	assert.Len(t, st.ExportSession().Elements, 2)

	run(c, "rm id-003")
	assert.Len(t, st.ExportSession().Elements, 1)

	run(c, "rm nope")
	assert.Contains(t, out.String(), `no element matches "nope"`)
}

func TestConsole_EditingCommands(t *testing.T) {
	c, st, out := newTestConsole(t)
	run(c,
		"new Work",
		`note # Title\nbody`,
		"tag id-002 #Go review",
		"untag id-002 review",
		"color id-002 yellow",
		"move id-002 12.5 -4",
		"resize id-002 320 180",
		"select id-002",
	)

	note, ok := st.SelectedElement()
	require.True(t, ok)
	assert.Equal(t, "# Title\nbody", note.Content)
	assert.Equal(t, []string{"go"}, note.Tags)
	assert.Equal(t, "yellow", note.Color)
	assert.Equal(t, models.Position{X: 12.5, Y: -4}, note.Position)
	assert.Equal(t, &models.Size{Width: 320, Height: 180}, note.Size)

	run(c, "color id-002 none", "done id-002", "resize id-002 0 10")
	note, _ = st.Element("id-002")
	assert.Empty(t, note.Color)
	assert.Contains(t, out.String(), "id-002 is a note, not a task")
	assert.Contains(t, out.String(), "width and height must be positive")
}

func TestConsole_Links(t *testing.T) {
	c, st, _ := newTestConsole(t)
	run(c, "new Reading", "link example.com/docs", "link http://go.dev The Go site")

	docs, ok := st.Element("id-002")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/docs", docs.URL)
	assert.Equal(t, "example.com", docs.Title)

	site, ok := st.Element("id-003")
	require.True(t, ok)
	assert.Equal(t, "http://go.dev", site.URL)
	assert.Equal(t, "The Go site", site.Title)

	run(c, "url id-002 pkg.go.dev", "desc id-002 package docs")
	docs, _ = st.Element("id-002")
	assert.Equal(t, "https://pkg.go.dev", docs.URL)
	assert.Equal(t, "pkg.go.dev", docs.Title)
	assert.Equal(t, "package docs", docs.Description)
}

func TestConsole_DragCommitsFinalPosition(t *testing.T) {
	c, st, out := newTestConsole(t)
	run(c, "new Board", "note drag me", "drag id-002 10,10 20,20 30,40")

	e, ok := st.Element("id-002")
	require.True(t, ok)
	assert.Equal(t, models.Position{X: 30, Y: 40}, e.Position)
	assert.Contains(t, out.String(), "id-002 at (30,40)")

	run(c, "drag id-002 oops")
	assert.Contains(t, out.String(), `"oops" is not a point`)
}

func TestConsole_Groups(t *testing.T) {
	c, st, out := newTestConsole(t)
	run(c,
		"new Board",
		"group Outer",
		"group Inner",
		"note child",
		"add-child id-002 id-003",
		"add-child id-003 id-004",
		"add-child id-004 id-002",
		"add-child id-003 id-002",
		"collapse id-002",
	)

	outer, _ := st.Element("id-002")
	inner, _ := st.Element("id-003")
	assert.Equal(t, []string{"id-003"}, outer.Children)
	assert.Equal(t, []string{"id-004"}, inner.Children)
	assert.True(t, outer.Collapsed)
	assert.Contains(t, out.String(), "id-004 is a note, not a group")
	assert.Contains(t, out.String(), "without forming a cycle")

	run(c, "remove-child id-003 id-004", "rmgroup id-002")
	_, ok := st.Element("id-002")
	assert.False(t, ok)
	inner, _ = st.Element("id-003")
	assert.Empty(t, inner.Children)
}

func TestConsole_ExportImport(t *testing.T) {
	c, st, out := newTestConsole(t)
	run(c, "new Trip Plan", "note pack #travel", "export")

	path := filepath.Join(c.settings.ExportDir, session.FileName("Trip Plan", exportTime))
	assert.Contains(t, out.String(), "exported to "+path)
	require.FileExists(t, path)

	run(c, "clear")
	require.Nil(t, st.ExportSession())

	run(c, "import "+path)
	restored := st.ExportSession()
	require.NotNil(t, restored)
	assert.Equal(t, "Trip Plan", restored.Name)
	require.Len(t, restored.Elements, 1)
	assert.Equal(t, []string{"travel"}, restored.Elements[0].Tags)
}

func TestConsole_InvalidImportLeavesStore(t *testing.T) {
	c, st, out := newTestConsole(t)
	run(c, "new Keep", "note still here")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"foo":"bar"}`), 0o644))
	run(c, "import "+bad)

	assert.Contains(t, out.String(), "error: invalid file format")
	current := st.ExportSession()
	require.NotNil(t, current)
	assert.Equal(t, "Keep", current.Name)
	assert.Len(t, current.Elements, 1)
}

func TestConsole_Search(t *testing.T) {
	c, st, out := newTestConsole(t)
	run(c, "new Mixed", "note apples", "note pears #fruit", "find FRUIT", "ls")

	assert.Equal(t, "FRUIT", st.State().SearchQuery)
	assert.Contains(t, out.String(), `1 elements match "FRUIT"`)
	assert.Contains(t, out.String(), "pears #fruit")
	assert.NotContains(t, out.String(), "apples  @")

	run(c, "key escape")
	assert.Empty(t, st.State().SearchQuery)
}

func TestConsole_Shortcuts(t *testing.T) {
	c, st, out := newTestConsole(t)

	run(c, "key ctrl+n")
	assert.Contains(t, out.String(), errNoSession.Error())

	run(c, "new Keys", "key ctrl+n", "key cmd+t", "key /", "key ctrl+x")
	counts := st.Counts()
	assert.Equal(t, 1, counts[models.NoteElement])
	assert.Equal(t, 1, counts[models.TaskElement])
	assert.Contains(t, out.String(), "search with: find <query>")
	assert.Contains(t, out.String(), `"ctrl+x" is not bound`)
}

func TestConsole_DarkModeAndInfo(t *testing.T) {
	c, st, out := newTestConsole(t)
	run(c, "new Info", "note a", "task b", "dark", "info")

	assert.True(t, st.State().DarkMode)
	assert.Contains(t, out.String(), "dark mode\n")
	assert.Contains(t, out.String(), `session "Info": 1 notes, 1 tasks, 0 links, 0 groups`)
}

func TestConsole_Show(t *testing.T) {
	c, _, out := newTestConsole(t)
	run(c, "new Show", "task write report", "sub id-002 outline", "show")
	assert.Contains(t, out.String(), "nothing selected")

	run(c, "show id-002")
	assert.Contains(t, out.String(), "write report")
	assert.Contains(t, out.String(), "subtasks 0/1")
	assert.Contains(t, out.String(), "[ ] id-003 outline")
}

func TestConsole_Run(t *testing.T) {
	c, st, out := newTestConsole(t)
	reader := &scriptReader{
		lines: []string{"new Loop", "note one", "quit", "note never"},
		errs:  map[int]error{1: readline.ErrInterrupt},
	}

	require.NoError(t, c.Run(context.Background(), reader))

	assert.Len(t, st.ExportSession().Elements, 1)
	assert.Len(t, reader.lines, 1)
	assert.Contains(t, out.String(), "Type help")
}

func TestConsole_RunStopsAtEOF(t *testing.T) {
	c, _, _ := newTestConsole(t)
	require.NoError(t, c.Run(context.Background(), &scriptReader{lines: []string{"help"}}))
}

func TestConsole_RunReturnsReadErrors(t *testing.T) {
	c, _, _ := newTestConsole(t)
	boom := fmt.Errorf("terminal gone")

	err := c.Run(context.Background(), &scriptReader{errs: map[int]error{0: boom}})
	assert.ErrorIs(t, err, boom)
}

func TestConsole_UnknownCommand(t *testing.T) {
	c, _, out := newTestConsole(t)
	assert.False(t, c.Execute("frobnicate"))
	assert.Contains(t, out.String(), `unknown command "frobnicate"`)
	assert.True(t, c.Execute("EXIT"))
}

func TestParseChord(t *testing.T) {
	key, err := parseChord("Ctrl+N")
	require.NoError(t, err)
	assert.True(t, key.Ctrl)
	assert.Equal(t, "n", key.Name)

	key, err = parseChord("esc")
	require.NoError(t, err)
	assert.Equal(t, "escape", key.Name)

	_, err = parseChord("hyper+n")
	assert.Error(t, err)
}

func TestConsole_SubTaskOnVanishedTask(t *testing.T) {
	c, st, out := newTestConsole(t)
	run(c, "new Gone", "task short lived")
	st.DeleteElement("id-002")

	err := c.addSubTask("id-002", "orphan")
	assert.EqualError(t, err, "could not add a subtask to id-002")
	assert.NotContains(t, out.String(), "added subtask")
}

func TestFirstLine_TruncatesOnRunes(t *testing.T) {
	line := firstLine(strings.Repeat("é", 80))

	assert.True(t, utf8.ValidString(line))
	assert.Equal(t, strings.Repeat("é", 57)+"...", line)
	assert.Equal(t, "short", firstLine("  short\nsecond line"))
}
