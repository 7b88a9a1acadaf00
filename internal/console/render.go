package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/xaenox/problem-notes/internal/models"
)

// renderMarkdown renders note content for the terminal. It falls back to
// the raw text when glamour cannot render it.
func renderMarkdown(content string, dark bool) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	style := "light"
	if dark {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if runes := []rune(s); len(runes) > 60 {
		s = string(runes[:57]) + "..."
	}
	return s
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	formatted := make([]string, len(tags))
	for i, tag := range tags {
		formatted[i] = "#" + strings.ReplaceAll(tag, " ", "_")
	}
	return " " + strings.Join(formatted, " ")
}

// summary is the one-line listing of an element.
func summary(e models.Element) string {
	var detail string
	switch e.Type {
	case models.NoteElement:
	case models.TaskElement:
		mark := " "
		if e.Done {
			mark = "x"
		}
		total, completed := e.Progress()
		detail = fmt.Sprintf(" [%s]", mark)
		if total > 0 {
			detail += fmt.Sprintf(" %d/%d", completed, total)
		}
		if e.Priority != models.PriorityNone {
			detail += " !" + string(e.Priority)
		}
	case models.LinkElement:
		detail = " <" + e.URL + ">"
		if e.Title != "" {
			detail = " " + e.Title + detail
		}
	case models.GroupElement:
		state := "open"
		if e.Collapsed {
			state = "collapsed"
		}
		detail = fmt.Sprintf(" (%d children, %s)", len(e.Children), state)
	}

	return fmt.Sprintf("%-5s %s  %s%s%s  @(%g,%g)",
		e.Type, shortID(e.ID), firstLine(e.Content), detail, formatTags(e.Tags), e.Position.X, e.Position.Y)
}
