package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ganttr/internal/dates"
	"github.com/sadopc/ganttr/internal/gantt"
)

// popupPanel is the chart's details popup, drawn as a panel under the grid.
type popupPanel struct {
	trigger *gantt.PopupTrigger
}

func (p *popupPanel) Show(t gantt.PopupTrigger) { p.trigger = &t }

func (p *popupPanel) Hide() { p.trigger = nil }

func (p *popupPanel) visible() bool { return p.trigger != nil && p.trigger.Task != nil }

func (p *popupPanel) view(c *gantt.Chart, width int) string {
	if !p.visible() {
		return ""
	}
	t := p.trigger.Task
	layout := "MMM D, YYYY"
	if !dates.IsMidnight(t.Begin) || !dates.IsMidnight(t.Finish) {
		layout = "MMM D, YYYY HH:mm"
	}
	rows := []string{
		titleStyle.Render(t.Name),
		fmt.Sprintf("%s %s", mutedStyle.Render("Start     "), dates.Format(t.Begin, layout)),
		fmt.Sprintf("%s %s", mutedStyle.Render("End       "), dates.Format(c.RawEnd(t.Finish), layout)),
		fmt.Sprintf("%s %s working, %s ignored", mutedStyle.Render("Duration  "),
			formatDays(t.ActualDuration), formatDays(t.IgnoredDuration)),
		fmt.Sprintf("%s %d%%", mutedStyle.Render("Progress  "), t.Progress),
		fmt.Sprintf("%s %s", mutedStyle.Render("Depends on"), joinIDs(t.Dependencies)),
	}
	w := width - 4
	if w > 48 {
		w = 48
	}
	return popupStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
