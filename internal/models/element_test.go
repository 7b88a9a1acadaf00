package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stamp = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func TestElement_MarshalOnlyVariantFields(t *testing.T) {
	tests := []struct {
		name    string
		element Element
		present []string
		absent  []string
	}{
		{
			name:    "note",
			element: Element{ID: "n1", Type: NoteElement, Content: "# hi"},
			absent:  []string{"done", "subtasks", "url", "children", "collapsed"},
		},
		{
			name:    "task",
			element: Element{ID: "t1", Type: TaskElement, Priority: PriorityHigh},
			present: []string{"done", "subtasks", "priority"},
			absent:  []string{"url", "children"},
		},
		{
			name:    "link",
			element: Element{ID: "l1", Type: LinkElement, URL: "https://go.dev", Title: "Go"},
			present: []string{"url", "title"},
			absent:  []string{"done", "children", "description"},
		},
		{
			name:    "group",
			element: Element{ID: "g1", Type: GroupElement},
			present: []string{"children", "collapsed"},
			absent:  []string{"done", "url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.element)
			require.NoError(t, err)

			var raw map[string]any
			require.NoError(t, json.Unmarshal(data, &raw))

			for _, key := range []string{"id", "type", "content", "tags", "position", "createdAt", "updatedAt"} {
				assert.Contains(t, raw, key)
			}
			for _, key := range tt.present {
				assert.Contains(t, raw, key)
			}
			for _, key := range tt.absent {
				assert.NotContains(t, raw, key)
			}
			assert.NotContains(t, raw, "size")
			assert.Equal(t, []any{}, raw["tags"])
		})
	}
}

func TestElement_MarshalUnknownType(t *testing.T) {
	_, err := json.Marshal(Element{ID: "x", Type: "sticker"})
	assert.Error(t, err)
}

func TestElement_UnmarshalBrowserDocument(t *testing.T) {
	doc := `{
		"id": "t1",
		"type": "task",
		"content": "Buy milk",
		"tags": ["shopping"],
		"position": {"x": 120.5, "y": -40},
		"size": {"width": 300, "height": 180},
		"createdAt": "2024-05-01T10:00:00.000Z",
		"updatedAt": "2024-05-01T10:05:00.000Z",
		"done": false,
		"priority": "medium",
		"subtasks": [{"id": "s1", "content": "eggs", "done": true, "createdAt": "2024-05-01T10:01:00.000Z"}]
	}`

	var e Element
	require.NoError(t, json.Unmarshal([]byte(doc), &e))

	assert.Equal(t, TaskElement, e.Type)
	assert.Equal(t, Position{X: 120.5, Y: -40}, e.Position)
	require.NotNil(t, e.Size)
	assert.Equal(t, 300.0, e.Size.Width)
	assert.Equal(t, PriorityMedium, e.Priority)
	require.Len(t, e.Subtasks, 1)
	assert.True(t, e.Subtasks[0].Done)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC), e.UpdatedAt.UTC())
}

func TestElement_UnmarshalFillsEmptySequences(t *testing.T) {
	var g Element
	require.NoError(t, json.Unmarshal([]byte(`{"id":"g","type":"group","position":{"x":0,"y":0}}`), &g))

	assert.NotNil(t, g.Tags)
	assert.NotNil(t, g.Children)
	assert.Empty(t, g.Children)
}

func TestElement_CloneIsDeep(t *testing.T) {
	orig := Element{
		ID:       "t1",
		Type:     TaskElement,
		Tags:     []string{"a"},
		Size:     &Size{Width: 1, Height: 2},
		Subtasks: []SubTask{{ID: "s1", Content: "x", CreatedAt: stamp}},
	}

	c := orig.Clone()
	c.Tags[0] = "b"
	c.Size.Width = 99
	c.Subtasks[0].Done = true

	assert.Equal(t, "a", orig.Tags[0])
	assert.Equal(t, 1.0, orig.Size.Width)
	assert.False(t, orig.Subtasks[0].Done)
}

func TestElement_Progress(t *testing.T) {
	e := Element{Type: TaskElement, Subtasks: []SubTask{{ID: "a", Done: true}, {ID: "b"}, {ID: "c", Done: true}}}

	total, done := e.Progress()
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, done)
	assert.Equal(t, 1, e.SubTaskIndex("b"))
	assert.Equal(t, -1, e.SubTaskIndex("zz"))
}

func TestPriority_Next(t *testing.T) {
	p := PriorityNone
	var seen []Priority
	for i := 0; i < 4; i++ {
		p = p.Next()
		seen = append(seen, p)
	}
	assert.Equal(t, []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityNone}, seen)
}

func TestElementPatch_IgnoresForeignVariantFields(t *testing.T) {
	note := Element{ID: "n", Type: NoteElement}
	ElementPatch{Done: Ptr(true), URL: Ptr("https://x"), Content: Ptr("hello")}.Apply(&note)

	assert.Equal(t, "hello", note.Content)
	assert.False(t, note.Done)
	assert.Empty(t, note.URL)

	task := Element{ID: "t", Type: TaskElement}
	ElementPatch{Done: Ptr(true), Priority: Ptr(PriorityLow)}.Apply(&task)
	assert.True(t, task.Done)
	assert.Equal(t, PriorityLow, task.Priority)
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"example.com":          "https://example.com",
		"  go.dev/doc ":        "https://go.dev/doc",
		"http://plain.test":    "http://plain.test",
		"https://secure.test/": "https://secure.test/",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeURL(in), in)
	}
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "go.dev", DomainOf("https://go.dev/doc/effective_go"))
	assert.Equal(t, "not a url", DomainOf("not a url"))
}
