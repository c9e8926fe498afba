package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/ganttr/internal/dom"
	"github.com/sadopc/ganttr/internal/gantt"
	"github.com/sadopc/ganttr/internal/render"
	"github.com/sadopc/ganttr/internal/store"
)

// board owns the chart and the element tree it is mounted in. Models hold
// it by pointer so every value copy sees the same chart.
type board struct {
	store *store.Store
	base  gantt.Options
	chart *gantt.Chart
	view  *render.View
	popup *popupPanel
	queue []tea.Msg
}

func newBoard(s *store.Store, opts gantt.Options) (*board, error) {
	b := &board{store: s, base: opts, popup: &popupPanel{}}
	if err := b.rebuild(); err != nil {
		return nil, err
	}
	return b, nil
}

// options layers the stored calendar and the board's callbacks over the
// base options. A rebuilt chart keeps the current view mode and
// move-dependencies switch.
func (b *board) options() (gantt.Options, error) {
	o := b.base
	ignored, err := b.store.ListIgnoredDates()
	if err != nil {
		return o, err
	}
	holidays, err := b.store.ListHolidays()
	if err != nil {
		return o, err
	}
	o.Ignore.Dates = append(append([]time.Time(nil), o.Ignore.Dates...), store.Dates(ignored)...)
	o.Holidays = append(append([]time.Time(nil), o.Holidays...), store.Dates(holidays)...)
	if b.chart != nil {
		o.ViewMode = b.chart.ViewMode().Name
		o.MoveDependencies = b.chart.Options().MoveDependencies
	}
	o.Popup = b.popup
	o.Events = gantt.Events{
		DateChange: func(t *gantt.Task, start, end time.Time) {
			b.push(dateChangedMsg{id: t.ID, start: start, end: b.chart.RawEnd(end)})
		},
		ProgressChange: func(t *gantt.Task, p int) {
			b.push(progressChangedMsg{id: t.ID, progress: p})
		},
		ViewChange: func(m gantt.ViewMode) {
			b.push(viewChangedMsg{mode: m.Name})
		},
		Click: func(t *gantt.Task) {
			b.push(taskClickedMsg{id: t.ID})
		},
		DoubleClick: func(t *gantt.Task) {
			b.push(taskDoubleClickedMsg{id: t.ID})
		},
	}
	return o, nil
}

func (b *board) tasks() ([]gantt.Task, error) {
	rows, err := b.store.ListTasks()
	if err != nil {
		return nil, err
	}
	out := make([]gantt.Task, len(rows))
	for i, r := range rows {
		out[i] = r.ChartTask()
	}
	return out, nil
}

// rebuild creates a new chart from the store. Calendar changes need it
// because the ignore rule is fixed when a chart is created.
func (b *board) rebuild() error {
	opts, err := b.options()
	if err != nil {
		return fmt.Errorf("chart options: %w", err)
	}
	tasks, err := b.tasks()
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	c, err := gantt.New(tasks, opts)
	if err != nil {
		return fmt.Errorf("build chart: %w", err)
	}
	v, err := render.Mount(dom.Create("body", nil, nil), "body", c)
	if err != nil {
		return fmt.Errorf("mount chart: %w", err)
	}
	b.chart, b.view = c, v
	b.popup.Hide()
	return nil
}

// reload re-reads the tasks into the current chart.
func (b *board) reload() error {
	tasks, err := b.tasks()
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	if err := b.chart.Refresh(tasks); err != nil {
		return fmt.Errorf("refresh chart: %w", err)
	}
	b.view.Build()
	b.popup.Hide()
	return nil
}

func (b *board) push(msg tea.Msg) { b.queue = append(b.queue, msg) }

// drain turns the queued chart notifications into commands.
func (b *board) drain() []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(b.queue))
	for _, m := range b.queue {
		cmds = append(cmds, func() tea.Msg { return m })
	}
	b.queue = nil
	return cmds
}

// excluded describes the tasks the chart rejected.
func (b *board) excluded() string {
	invalid := b.chart.Invalid()
	if len(invalid) == 0 {
		return ""
	}
	if len(invalid) == 1 {
		return fmt.Sprintf("Task %q excluded: %s", invalid[0].TaskID, invalid[0].Reason)
	}
	return fmt.Sprintf("%d tasks excluded; first %q: %s", len(invalid), invalid[0].TaskID, invalid[0].Reason)
}
