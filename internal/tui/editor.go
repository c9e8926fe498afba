package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ganttr/internal/dates"
	"github.com/sadopc/ganttr/internal/gantt"
	"github.com/sadopc/ganttr/internal/store"
)

// taskFields are the form values. They live behind a pointer so they
// survive the model being copied.
type taskFields struct {
	name         string
	start        string
	end          string
	duration     string
	progress     string
	dependencies string
	customClass  string
}

type editorModel struct {
	board *board
	width int

	formActive bool
	form       *huh.Form
	editingID  string // empty while creating a task
	fields     *taskFields
}

func newEditorModel(b *board) editorModel {
	return editorModel{board: b, fields: &taskFields{}}
}

func (e *editorModel) setSize(w, _ int) {
	e.width = w
}

// edit opens the form on an existing task, showing the dates it was
// entered with.
func (e editorModel) edit(id string) (editorModel, tea.Cmd) {
	t, err := e.board.store.GetTask(id)
	if err != nil {
		return e, func() tea.Msg { return errStatus("Edit: %v", err) }
	}
	*e.fields = taskFields{
		name:         t.Name,
		start:        t.Start,
		end:          t.End,
		duration:     t.Duration,
		progress:     strconv.Itoa(t.Progress),
		dependencies: strings.Join(t.Dependencies, ", "),
		customClass:  t.CustomClass,
	}
	e.editingID = t.ID
	return e.open()
}

// create opens an empty form for a task starting on day.
func (e editorModel) create(day time.Time) (editorModel, tea.Cmd) {
	*e.fields = taskFields{
		start:    dates.Canonical(dates.StartOf(day, dates.Day)),
		duration: "1d",
		progress: "0",
	}
	e.editingID = ""
	return e.open()
}

func (e editorModel) open() (editorModel, tea.Cmd) {
	loc := e.board.chart.Options().Location
	f := e.fields
	e.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&f.name).Validate(required("name")),
			huh.NewInput().Title("Start").Placeholder("2024-01-31 or 2024-01-31 09:00").
				Value(&f.start).Validate(dateField(loc, false)),
			huh.NewInput().Title("End").Placeholder("leave empty to use the duration").
				Value(&f.end).Validate(dateField(loc, true)),
			huh.NewInput().Title("Duration").Placeholder("5d, 2w, 1d 4h").
				Value(&f.duration).Validate(durationField),
		).Title("Schedule"),
		huh.NewGroup(
			huh.NewInput().Title("Progress (%)").Value(&f.progress).Validate(progressField),
			huh.NewInput().Title("Depends on (comma-separated ids)").Value(&f.dependencies),
			huh.NewInput().Title("Class").Value(&f.customClass),
		).Title("Details"),
	).WithShowHelp(true).WithShowErrors(true)

	e.formActive = true
	return e, e.form.Init()
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func dateField(loc *time.Location, optional bool) func(string) error {
	return func(s string) error {
		if optional && strings.TrimSpace(s) == "" {
			return nil
		}
		_, err := dates.Parse(s, loc)
		return err
	}
}

func durationField(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := dates.ParseDurations(s)
	return err
}

func progressField(s string) error {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 0 || p > 100 {
		return errors.New("progress must be a number from 0 to 100")
	}
	return nil
}

func (e editorModel) update(msg tea.Msg) (editorModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			e.formActive = false
			e.form = nil
			return e, nil
		}
	}

	form, cmd := e.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		e.form = f
	}

	if e.form.State == huh.StateCompleted {
		e.formActive = false
		text, err := e.save()
		if err != nil {
			return e, func() tea.Msg { return errStatus("Save: %v", err) }
		}
		return e, tea.Batch(
			func() tea.Msg { return boardChangedMsg{} },
			func() tea.Msg { return statusMsg{text: text} },
		)
	}
	return e, cmd
}

// row builds the stored form of the fields. A duration wins over an end
// date.
func (e editorModel) row() store.Task {
	f := e.fields
	progress, _ := strconv.Atoi(strings.TrimSpace(f.progress))
	t := store.Task{
		ID:           e.editingID,
		Name:         strings.TrimSpace(f.name),
		Start:        strings.TrimSpace(f.start),
		End:          strings.TrimSpace(f.end),
		Duration:     strings.TrimSpace(f.duration),
		Progress:     progress,
		Dependencies: gantt.SplitDependencies(f.dependencies),
		CustomClass:  strings.TrimSpace(f.customClass),
	}
	if t.Duration != "" {
		t.End = ""
	}
	return t
}

// save applies the form. An edit goes through the chart first so a task
// the chart would reject is never stored.
func (e editorModel) save() (string, error) {
	t := e.row()
	c := e.board.chart
	if t.ID != "" {
		patch := gantt.TaskPatch{
			Name:         &t.Name,
			Start:        &t.Start,
			End:          &t.End,
			Duration:     &t.Duration,
			Progress:     &t.Progress,
			Dependencies: &t.Dependencies,
			CustomClass:  &t.CustomClass,
		}
		if err := c.UpdateTask(t.ID, patch); err != nil {
			return "", err
		}
		if err := e.board.store.UpdateTask(t); err != nil {
			return "", err
		}
		e.board.view.Build()
		return fmt.Sprintf("Saved %q", t.Name), nil
	}

	created, err := e.board.store.CreateTask(t)
	if err != nil {
		return "", err
	}
	if err := e.board.reload(); err != nil {
		return "", err
	}
	for _, v := range c.Invalid() {
		if v.TaskID != created.ID {
			continue
		}
		if err := e.board.store.DeleteTask(created.ID); err != nil {
			return "", err
		}
		if err := e.board.reload(); err != nil {
			return "", err
		}
		return "", errors.New(v.Reason)
	}
	return fmt.Sprintf("Created %q", created.Name), nil
}

func (e editorModel) view() string {
	title := titleStyle.Render("New Task")
	if e.editingID != "" {
		title = titleStyle.Render("Edit Task")
	}
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", e.form.View())
	return panelStyle.Width(e.width - 4).Render(content)
}
