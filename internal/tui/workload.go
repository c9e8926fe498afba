package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ganttr/internal/dates"
	"github.com/sadopc/ganttr/internal/gantt"
)

// workloadPage is the number of tasks charted at once.
const workloadPage = 8

// workloadModel charts working and ignored days per task.
type workloadModel struct {
	board  *board
	width  int
	height int

	offset int // first task on the page

	chart barchart.Model
}

func newWorkloadModel(b *board) workloadModel {
	return workloadModel{
		board: b,
		chart: barchart.New(60, 12),
	}
}

func (w *workloadModel) setSize(width, height int) {
	w.width = width
	w.height = height
	w.buildChart()
}

func (w workloadModel) page() []*gantt.Task {
	var tasks []*gantt.Task
	for _, b := range w.board.chart.Bars() {
		tasks = append(tasks, b.Task)
	}
	if w.offset >= len(tasks) {
		return nil
	}
	return tasks[w.offset:min(w.offset+workloadPage, len(tasks))]
}

func (w workloadModel) update(msg tea.Msg) (workloadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case boardChangedMsg:
		if w.offset >= len(w.board.chart.Bars()) {
			w.offset = 0
		}
		w.buildChart()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if w.offset > 0 {
				w.offset = max(0, w.offset-workloadPage)
				w.buildChart()
			}
		case key.Matches(msg, keys.Right):
			if w.offset+workloadPage < len(w.board.chart.Bars()) {
				w.offset += workloadPage
				w.buildChart()
			}
		}
	}
	return w, nil
}

func (w *workloadModel) buildChart() {
	chartWidth := w.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if w.height > 30 {
		chartHeight = 16
	}

	w.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for i, t := range w.page() {
		color := lipgloss.Color(barColors[(w.offset+i)%len(barColors)])
		bars = append(bars, barchart.BarData{
			Label: truncate(t.Name, 8),
			Values: []barchart.BarValue{
				{Name: "Working", Value: t.ActualDuration, Style: lipgloss.NewStyle().Foreground(color)},
				{Name: "Ignored", Value: t.IgnoredDuration, Style: lipgloss.NewStyle().Foreground(colorSubtle)},
			},
		})
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{Values: []barchart.BarValue{{Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}}}
	}

	w.chart.PushAll(bars)
	w.chart.Draw()
}

func (w workloadModel) view() string {
	width := w.width - 4
	tasks := w.page()

	header := titleStyle.Render("Workload")
	if n := len(w.board.chart.Bars()); n > 0 {
		header = lipgloss.JoinHorizontal(lipgloss.Bottom, header, "  ",
			mutedStyle.Render(fmt.Sprintf("tasks %d-%d of %d", w.offset+1, w.offset+len(tasks), n)))
	}

	legend := fmt.Sprintf("  %s working  %s ignored",
		lipgloss.NewStyle().Foreground(colorPrimary).Render("█"),
		lipgloss.NewStyle().Foreground(colorSubtle).Render("█"))
	nav := mutedStyle.Render("  ←/→: page")

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", w.chart.View(), "", legend, "", w.renderTable(tasks, width), "", nav,
		),
	)
}

func (w workloadModel) renderTable(tasks []*gantt.Task, width int) string {
	if len(tasks) == 0 {
		return mutedStyle.Render("  No tasks to chart")
	}
	c := w.board.chart

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %-11s %-11s %8s %8s %8s",
		"Task", "Start", "End", "Working", "Ignored", "Progress")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(width-6, 72))))

	var working, ignored float64
	for i, t := range tasks {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(barColors[(w.offset+i)%len(barColors)])).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-18s %-11s %-11s %8s %8s %7d%%",
			dot, truncate(t.Name, 18),
			dates.Format(t.Begin, "YYYY-MM-DD"), dates.Format(c.RawEnd(t.Finish), "YYYY-MM-DD"),
			formatDays(t.ActualDuration), formatDays(t.IgnoredDuration), t.Progress,
		))
		working += t.ActualDuration
		ignored += t.IgnoredDuration
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-44s %8s %8s", "Total", formatDays(working), formatDays(ignored))))
	return strings.Join(rows, "\n")
}
