package console

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/problem-notes/internal/drag"
	"github.com/xaenox/problem-notes/internal/models"
	"github.com/xaenox/problem-notes/internal/session"
	"github.com/xaenox/problem-notes/internal/shortcuts"
)

const helpText = `Sessions:
  new <name>                      start a new session (replaces the current one)
  export                          write the session to <name>_<date>.json
  import <path>                   replace the session with an exported file
  clear                           drop the current session
  info                            session name, element counts, settings

Elements (ids may be shortened to any unique prefix, \n in text is a newline):
  note [text]                     add a note
  task [text]                     add a task
  link <url> [title]              add a link, title defaults to the domain
  group [name]                    add a group
  edit <id> <text>                replace the content
  url <id> <url> [title]          change a link's address
  desc <id> <text>                set a link's description
  tag <id> <tag>...               add tags
  untag <id> <tag>                remove a tag
  color <id> <color|none>         set or clear the color
  move <id> <x> <y>               set the position
  drag <id> <x,y>...              drag through the given points
  resize <id> <width> <height>    set the size
  rm <id>                         delete an element

Tasks:
  done <id>                       toggle done
  priority <id> [low|medium|high|none]
                                  set the priority, or cycle it when omitted
  sub <task> <text>               add a subtask
  subdone <task> <sub>            toggle a subtask
  subedit <task> <sub> <text>     edit a subtask
  subrm <task> <sub>              delete a subtask

Groups:
  add-child <group> <id>          put an element in a group
  remove-child <group> <id>       take an element out of a group
  collapse <group>                toggle collapsed
  rmgroup <group>                 scatter the children and delete the group

View:
  ls                              list elements matching the search
  find [query]                    set the search, empty clears it
  select <id|none>                select an element
  show [id]                       show an element (default: the selection)
  dark                            toggle dark mode
  key <chord>                     press a shortcut: ctrl+n, ctrl+t, ctrl+l, ctrl+k, /, escape
  help                            this text
  quit                            leave
`

func (c *Console) handleHelp() error {
	c.printf("%s", helpText)
	return nil
}

func (c *Console) handleNew(args string) error {
	name := strings.TrimSpace(args)
	if name == "" {
		return errors.New("usage: new <name>")
	}
	c.store.CreateSession(name)
	c.logger.Info("Session created", zap.String("name", name))
	c.printf("session %q started\n", name)
	return nil
}

func (c *Console) suggestTags(content string) []string {
	if c.classifier == nil {
		return []string{}
	}
	return c.classifier.ClassifyContent(content)
}

func (c *Console) add(e models.Element) error {
	if _, err := c.elements(); err != nil {
		return err
	}
	id := c.store.AddElement(e)
	if id == "" {
		return fmt.Errorf("could not add %s", e.Type)
	}
	c.printf("added %s %s\n", e.Type, shortID(id))
	return nil
}

func (c *Console) handleCreate(elementType models.ElementType, args string) error {
	content := unescape(args)
	if content == "" {
		switch elementType {
		case models.NoteElement:
			content = shortcuts.DefaultNoteContent
		case models.TaskElement:
			content = shortcuts.DefaultTaskContent
		case models.GroupElement:
			content = "Group"
		}
	}

	return c.add(models.Element{
		Type:     elementType,
		Content:  content,
		Tags:     c.suggestTags(content),
		Position: c.spawn(),
	})
}

func (c *Console) handleLink(args string) error {
	words, title := splitArgs(args, 1)
	if len(words) == 0 {
		return errors.New("usage: link <url> [title]")
	}

	url := models.NormalizeURL(words[0])
	if title == "" {
		title = models.DomainOf(url)
	}
	return c.add(models.Element{
		Type:     models.LinkElement,
		Content:  title,
		URL:      url,
		Title:    title,
		Tags:     []string{},
		Position: c.spawn(),
	})
}

func (c *Console) handleEdit(args string) error {
	words, text := splitArgs(args, 1)
	if len(words) == 0 || text == "" {
		return errors.New("usage: edit <id> <text>")
	}
	e, err := c.resolve(words[0])
	if err != nil {
		return err
	}
	content := unescape(text)
	c.store.UpdateElement(e.ID, models.ElementPatch{Content: &content})
	return nil
}

func (c *Console) handleURL(args string) error {
	words, title := splitArgs(args, 2)
	if len(words) < 2 {
		return errors.New("usage: url <id> <url> [title]")
	}
	e, err := c.resolveType(words[0], models.LinkElement)
	if err != nil {
		return err
	}

	url := models.NormalizeURL(words[1])
	if title == "" {
		title = models.DomainOf(url)
	}
	c.store.UpdateElement(e.ID, models.ElementPatch{URL: &url, Title: &title})
	return nil
}

func (c *Console) handleDescription(args string) error {
	words, text := splitArgs(args, 1)
	if len(words) == 0 {
		return errors.New("usage: desc <id> <text>")
	}
	e, err := c.resolveType(words[0], models.LinkElement)
	if err != nil {
		return err
	}
	description := unescape(text)
	c.store.UpdateElement(e.ID, models.ElementPatch{Description: &description})
	return nil
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(tag, "#"))
}

func (c *Console) handleTag(args string) error {
	words := strings.Fields(args)
	if len(words) < 2 {
		return errors.New("usage: tag <id> <tag>...")
	}
	e, err := c.resolve(words[0])
	if err != nil {
		return err
	}

	tags := slices.Clone(e.Tags)
	for _, word := range words[1:] {
		tag := normalizeTag(word)
		if tag != "" && !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	c.store.UpdateElement(e.ID, models.ElementPatch{Tags: &tags})
	return nil
}

func (c *Console) handleUntag(args string) error {
	words := strings.Fields(args)
	if len(words) != 2 {
		return errors.New("usage: untag <id> <tag>")
	}
	e, err := c.resolve(words[0])
	if err != nil {
		return err
	}

	tag := normalizeTag(words[1])
	if !e.HasTag(tag) {
		return fmt.Errorf("%s has no tag %q", shortID(e.ID), tag)
	}
	tags := slices.DeleteFunc(slices.Clone(e.Tags), func(t string) bool { return t == tag })
	c.store.UpdateElement(e.ID, models.ElementPatch{Tags: &tags})
	return nil
}

func (c *Console) handleColor(args string) error {
	words := strings.Fields(args)
	if len(words) != 2 {
		return errors.New("usage: color <id> <color|none>")
	}
	e, err := c.resolve(words[0])
	if err != nil {
		return err
	}

	color := words[1]
	if color == "none" || color == "-" {
		color = ""
	}
	c.store.UpdateElement(e.ID, models.ElementPatch{Color: &color})
	return nil
}

func parseFloats(words []string) ([]float64, error) {
	values := make([]float64, len(words))
	for i, word := range words {
		v, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", word)
		}
		values[i] = v
	}
	return values, nil
}

func parsePoint(word string) (models.Position, error) {
	x, y, ok := strings.Cut(word, ",")
	if !ok {
		return models.Position{}, fmt.Errorf("%q is not a point, use x,y", word)
	}
	values, err := parseFloats([]string{x, y})
	if err != nil {
		return models.Position{}, err
	}
	return models.Position{X: values[0], Y: values[1]}, nil
}

func (c *Console) handleMove(args string) error {
	words := strings.Fields(args)
	if len(words) != 3 {
		return errors.New("usage: move <id> <x> <y>")
	}
	e, err := c.resolve(words[0])
	if err != nil {
		return err
	}
	values, err := parseFloats(words[1:])
	if err != nil {
		return err
	}
	c.store.MoveElement(e.ID, models.Position{X: values[0], Y: values[1]})
	return nil
}

func (c *Console) handleResize(args string) error {
	words := strings.Fields(args)
	if len(words) != 3 {
		return errors.New("usage: resize <id> <width> <height>")
	}
	e, err := c.resolve(words[0])
	if err != nil {
		return err
	}
	values, err := parseFloats(words[1:])
	if err != nil {
		return err
	}
	if values[0] <= 0 || values[1] <= 0 {
		return errors.New("width and height must be positive")
	}
	c.store.ResizeElement(e.ID, models.Size{Width: values[0], Height: values[1]})
	return nil
}

func (c *Console) handleDrag(args string) error {
	words := strings.Fields(args)
	if len(words) < 2 {
		return errors.New("usage: drag <id> <x,y>...")
	}
	e, err := c.resolve(words[0])
	if err != nil {
		return err
	}

	points := make([]models.Position, 0, len(words)-1)
	for _, word := range words[1:] {
		p, err := parsePoint(word)
		if err != nil {
			return err
		}
		points = append(points, p)
	}

	throttler := drag.NewThrottler(c.store, c.settings.DragInterval)
	for _, p := range points {
		throttler.Move(e.ID, p)
	}
	throttler.End()

	if moved, ok := c.store.Element(e.ID); ok {
		c.printf("%s at (%g,%g)\n", shortID(e.ID), moved.Position.X, moved.Position.Y)
	}
	return nil
}

func (c *Console) handleDone(args string) error {
	e, err := c.resolveType(strings.TrimSpace(args), models.TaskElement)
	if err != nil {
		return err
	}
	done := !e.Done
	c.store.UpdateElement(e.ID, models.ElementPatch{Done: &done})
	return nil
}

func (c *Console) handlePriority(args string) error {
	words := strings.Fields(args)
	if len(words) == 0 || len(words) > 2 {
		return errors.New("usage: priority <id> [low|medium|high|none]")
	}
	e, err := c.resolveType(words[0], models.TaskElement)
	if err != nil {
		return err
	}

	priority := e.Priority.Next()
	if len(words) == 2 {
		priority = models.Priority(strings.ToLower(words[1]))
		if priority == "none" {
			priority = models.PriorityNone
		}
		if !priority.Valid() {
			return fmt.Errorf("unknown priority %q", words[1])
		}
	}
	c.store.UpdateElement(e.ID, models.ElementPatch{Priority: &priority})

	label := string(priority)
	if priority == models.PriorityNone {
		label = "none"
	}
	c.printf("%s priority %s\n", shortID(e.ID), label)
	return nil
}

func (c *Console) handleSubAdd(args string) error {
	words, text := splitArgs(args, 1)
	if len(words) == 0 || text == "" {
		return errors.New("usage: sub <task> <text>")
	}
	task, err := c.resolveType(words[0], models.TaskElement)
	if err != nil {
		return err
	}
	return c.addSubTask(task.ID, unescape(text))
}

// addSubTask reports a task that vanished after it was resolved.
func (c *Console) addSubTask(taskID, content string) error {
	id := c.store.AddSubTask(taskID, content)
	if id == "" {
		return fmt.Errorf("could not add a subtask to %s", shortID(taskID))
	}
	c.printf("added subtask %s\n", shortID(id))
	return nil
}

func (c *Console) resolveSub(taskRef, subRef string) (models.Element, models.SubTask, error) {
	task, err := c.resolveType(taskRef, models.TaskElement)
	if err != nil {
		return task, models.SubTask{}, err
	}
	sub, err := resolveSubTask(task, subRef)
	return task, sub, err
}

func (c *Console) handleSubDone(args string) error {
	words := strings.Fields(args)
	if len(words) != 2 {
		return errors.New("usage: subdone <task> <sub>")
	}
	task, sub, err := c.resolveSub(words[0], words[1])
	if err != nil {
		return err
	}
	done := !sub.Done
	c.store.UpdateSubTask(task.ID, sub.ID, models.SubTaskPatch{Done: &done})
	return nil
}

func (c *Console) handleSubEdit(args string) error {
	words, text := splitArgs(args, 2)
	if len(words) < 2 || text == "" {
		return errors.New("usage: subedit <task> <sub> <text>")
	}
	task, sub, err := c.resolveSub(words[0], words[1])
	if err != nil {
		return err
	}
	content := unescape(text)
	c.store.UpdateSubTask(task.ID, sub.ID, models.SubTaskPatch{Content: &content})
	return nil
}

func (c *Console) handleSubDelete(args string) error {
	words := strings.Fields(args)
	if len(words) != 2 {
		return errors.New("usage: subrm <task> <sub>")
	}
	task, sub, err := c.resolveSub(words[0], words[1])
	if err != nil {
		return err
	}
	c.store.DeleteSubTask(task.ID, sub.ID)
	return nil
}

func (c *Console) resolvePair(args, usage string) (models.Element, models.Element, error) {
	words := strings.Fields(args)
	if len(words) != 2 {
		return models.Element{}, models.Element{}, errors.New(usage)
	}
	group, err := c.resolveType(words[0], models.GroupElement)
	if err != nil {
		return group, models.Element{}, err
	}
	child, err := c.resolve(words[1])
	return group, child, err
}

func (c *Console) handleAddChild(args string) error {
	group, child, err := c.resolvePair(args, "usage: add-child <group> <id>")
	if err != nil {
		return err
	}
	if group.HasChild(child.ID) {
		return fmt.Errorf("%s is already in %s", shortID(child.ID), shortID(group.ID))
	}

	c.store.AddToGroup(group.ID, child.ID)
	if updated, ok := c.store.Element(group.ID); !ok || !updated.HasChild(child.ID) {
		return fmt.Errorf("%s cannot go into %s without forming a cycle", shortID(child.ID), shortID(group.ID))
	}
	return nil
}

func (c *Console) handleRemoveChild(args string) error {
	group, child, err := c.resolvePair(args, "usage: remove-child <group> <id>")
	if err != nil {
		return err
	}
	if !group.HasChild(child.ID) {
		return fmt.Errorf("%s is not in %s", shortID(child.ID), shortID(group.ID))
	}
	c.store.RemoveFromGroup(group.ID, child.ID)
	return nil
}

func (c *Console) handleCollapse(args string) error {
	group, err := c.resolveType(strings.TrimSpace(args), models.GroupElement)
	if err != nil {
		return err
	}
	collapsed := !group.Collapsed
	c.store.UpdateElement(group.ID, models.ElementPatch{Collapsed: &collapsed})
	return nil
}

func (c *Console) handleDelete(args string) error {
	e, err := c.resolve(strings.TrimSpace(args))
	if err != nil {
		return err
	}
	c.store.DeleteElement(e.ID)
	c.printf("deleted %s %s\n", e.Type, shortID(e.ID))
	return nil
}

func (c *Console) handleDeleteGroup(args string) error {
	group, err := c.resolveType(strings.TrimSpace(args), models.GroupElement)
	if err != nil {
		return err
	}
	c.store.DeleteGroup(group.ID)
	c.printf("deleted group %s, %d elements released\n", shortID(group.ID), len(group.Children))
	return nil
}

func (c *Console) handleSelect(args string) error {
	ref := strings.TrimSpace(args)
	if ref == "" || ref == "none" || ref == "-" {
		c.store.SetSelectedElement("")
		return nil
	}
	e, err := c.resolve(ref)
	if err != nil {
		return err
	}
	c.store.SetSelectedElement(e.ID)
	return nil
}

func (c *Console) handleFind(args string) error {
	c.store.SetSearchQuery(args)
	if args == "" {
		c.printf("search cleared\n")
		return nil
	}
	c.printf("%d elements match %q\n", len(c.store.FilteredElements()), args)
	return nil
}

func (c *Console) handleList() error {
	if _, err := c.elements(); err != nil {
		return err
	}

	state := c.store.State()
	elements := c.store.FilteredElements()
	if state.SearchQuery != "" {
		c.printf("search: %q\n", state.SearchQuery)
	}
	if len(elements) == 0 {
		c.printf("no elements\n")
		return nil
	}
	for _, e := range elements {
		marker := " "
		if e.ID == state.SelectedID {
			marker = "*"
		}
		c.printf("%s %s\n", marker, summary(e))
	}
	return nil
}

func (c *Console) handleShow(args string) error {
	var (
		e   models.Element
		err error
	)
	if ref := strings.TrimSpace(args); ref != "" {
		e, err = c.resolve(ref)
	} else if _, err = c.elements(); err == nil {
		var ok bool
		if e, ok = c.store.SelectedElement(); !ok {
			err = errors.New("nothing selected, use show <id>")
		}
	}
	if err != nil {
		return err
	}

	c.printf("%s %s\n", e.Type, e.ID)
	c.printf("  position (%g,%g)", e.Position.X, e.Position.Y)
	if e.Size != nil {
		c.printf("  size %gx%g", e.Size.Width, e.Size.Height)
	}
	if e.Color != "" {
		c.printf("  color %s", e.Color)
	}
	c.printf("\n")
	if len(e.Tags) > 0 {
		c.printf("  tags%s\n", formatTags(e.Tags))
	}
	c.printf("  created %s, updated %s\n",
		e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.UpdatedAt.Local().Format("2006-01-02 15:04:05"))

	switch e.Type {
	case models.NoteElement:
		c.printf("\n%s\n", renderMarkdown(e.Content, c.store.State().DarkMode))
	case models.TaskElement:
		c.printf("\n%s\n", e.Content)
		if e.Priority != models.PriorityNone {
			c.printf("  priority %s\n", e.Priority)
		}
		total, completed := e.Progress()
		c.printf("  done %t, subtasks %d/%d\n", e.Done, completed, total)
		for _, sub := range e.Subtasks {
			mark := " "
			if sub.Done {
				mark = "x"
			}
			c.printf("    [%s] %s %s\n", mark, shortID(sub.ID), sub.Content)
		}
	case models.LinkElement:
		c.printf("\n%s <%s>\n", e.Title, e.URL)
		if e.Description != "" {
			c.printf("%s\n", e.Description)
		}
	case models.GroupElement:
		state := "open"
		if e.Collapsed {
			state = "collapsed"
		}
		c.printf("\n%s (%s)\n", e.Content, state)
		for _, child := range c.store.GroupChildren(e.ID) {
			c.printf("    %s\n", summary(child))
		}
	}
	return nil
}

func (c *Console) handleExport() error {
	current := c.store.ExportSession()
	if current == nil {
		return errNoSession
	}

	path, err := session.ExportFile(c.settings.ExportDir, current, c.now())
	if err != nil {
		c.logger.Error("Failed to export session",
			zap.Error(err),
			zap.String("session_id", current.ID))
		return err
	}

	c.logger.Info("Session exported",
		zap.String("session_id", current.ID),
		zap.String("path", path))
	c.printf("exported to %s\n", path)
	return nil
}

func (c *Console) handleImport(args string) error {
	path := strings.TrimSpace(args)
	if path == "" {
		return errors.New("usage: import <path>")
	}

	imported, err := session.ImportFile(path)
	if err != nil {
		c.logger.Warn("Failed to import session",
			zap.Error(err),
			zap.String("path", path))

		var importErr *session.ImportError
		if errors.As(err, &importErr) {
			return errors.New(importErr.Message)
		}
		return err
	}

	c.store.LoadSession(imported)
	c.printf("loaded session %q with %d elements\n", imported.Name, len(imported.Elements))
	return nil
}

func (c *Console) handleDark() error {
	c.store.ToggleDarkMode()
	mode := "light"
	if c.store.State().DarkMode {
		mode = "dark"
	}
	c.printf("%s mode\n", mode)
	return nil
}

func (c *Console) handleClear() error {
	c.store.ClearSession()
	c.printf("session cleared\n")
	return nil
}

func (c *Console) handleInfo() error {
	state := c.store.State()
	if !state.HasSession {
		c.printf("no active session\n")
	} else {
		counts := c.store.Counts()
		c.printf("session %q: %d notes, %d tasks, %d links, %d groups\n",
			state.SessionName,
			counts[models.NoteElement], counts[models.TaskElement],
			counts[models.LinkElement], counts[models.GroupElement])
	}
	if state.SearchQuery != "" {
		c.printf("search %q\n", state.SearchQuery)
	}
	if state.SelectedID != "" {
		c.printf("selected %s\n", shortID(state.SelectedID))
	}
	c.printf("dark mode %t\n", state.DarkMode)
	return nil
}
