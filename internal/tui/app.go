package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ganttr/internal/dates"
	"github.com/sadopc/ganttr/internal/export"
	"github.com/sadopc/ganttr/internal/gantt"
	"github.com/sadopc/ganttr/internal/store"
)

// tickInterval bounds how late a hover popup can open.
const tickInterval = 100 * time.Millisecond

var exportFormats = []struct {
	name, ext string
	write     func(*gantt.Chart, string) error
}{
	{"CSV", "csv", export.ToCSV},
	{"JSON", "json", export.ToJSON},
	{"SVG", "svg", export.ToSVG},
}

// Options configure the app.
type Options struct {
	Chart gantt.Options
	// CellsPerColumn is the number of terminal cells one chart column
	// takes.
	CellsPerColumn int
	// ExportDir defaults to the home directory.
	ExportDir string
	// Now is the clock used for double clicks.
	Now func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	board  *board
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	gantt    ganttModel
	editor   editorModel
	workload workloadModel
	calendar calendarModel

	help   help.Model
	status statusMsg
}

func NewApp(s *store.Store, o Options) (App, error) {
	b, err := newBoard(s, o.Chart)
	if err != nil {
		return App{}, err
	}

	h := help.New()
	h.ShowAll = false

	a := App{
		store:      s,
		board:      b,
		activeView: viewGantt,
		exportDir:  o.ExportDir,
		gantt:      newGanttModel(b, o.CellsPerColumn, o.Now),
		editor:     newEditorModel(b),
		workload:   newWorkloadModel(b),
		calendar:   newCalendarModel(b),
		help:       h,
	}
	if v, err := s.GetSetting("scroll_offset"); err == nil {
		a.gantt.scroll, _ = strconv.ParseFloat(v, 64)
	}
	return a, nil
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), a.calendar.refresh()}
	if text := a.board.excluded(); text != "" {
		cmds = append(cmds, func() tea.Msg { return statusMsg{text: text, isError: true} })
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - lipgloss.Height(a.renderHeader()) - 1
		a.gantt.setSize(a.width, contentHeight)
		a.editor.setSize(a.width, contentHeight)
		a.workload.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		return a, nil

	case tea.MouseMsg:
		if a.exportPicking || a.isFormActive() || a.activeView != viewGantt {
			return a, nil
		}
		msg.Y -= lipgloss.Height(a.renderHeader())
		var cmd tea.Cmd
		a.gantt, cmd = a.gantt.update(msg)
		return a, cmd

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A form captures every key until it closes.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.saveScroll()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Workload):
			a.activeView = a.toggle(viewWorkload)
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Calendar):
			a.activeView = a.toggle(viewCalendar)
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

		if a.activeView == viewGantt {
			switch {
			case key.Matches(msg, keys.Edit):
				if t, ok := a.gantt.selected(); ok {
					var cmd tea.Cmd
					a.editor, cmd = a.editor.edit(t.ID)
					return a, cmd
				}
				return a, nil
			case key.Matches(msg, keys.New):
				var cmd tea.Cmd
				a.editor, cmd = a.editor.create(a.newTaskDay())
				return a, cmd
			case key.Matches(msg, keys.Delete):
				if t, ok := a.gantt.selected(); ok {
					return a, a.deleteTask(t.ID)
				}
				return a, nil
			}
		}

	case tickMsg:
		a.board.chart.Tick(time.Time(msg))
		return a, tickCmd()

	case statusMsg:
		a.status = msg
		return a, nil

	case exportDoneMsg:
		a.status = statusMsg{text: "Exported to " + msg.path}
		a.exportPicking = false
		return a, nil

	case dateChangedMsg:
		return a, a.saveDates(msg)

	case progressChangedMsg:
		s := a.store
		return a, func() tea.Msg {
			if err := s.UpdateTaskProgress(msg.id, msg.progress); err != nil {
				return errStatus("Save progress: %v", err)
			}
			return statusMsg{text: fmt.Sprintf("%s: %d%% done", msg.id, msg.progress)}
		}

	case viewChangedMsg:
		s := a.store
		return a, func() tea.Msg {
			if err := s.SetSetting("view_mode", msg.mode); err != nil {
				return errStatus("Save view mode: %v", err)
			}
			return statusMsg{text: msg.mode + " view"}
		}

	case taskClickedMsg:
		a.gantt.selectTask(msg.id)
		return a, nil

	case taskDoubleClickedMsg:
		var cmd tea.Cmd
		a.editor, cmd = a.editor.edit(msg.id)
		return a, cmd

	case boardChangedMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.gantt, cmd = a.gantt.update(msg)
		cmds = append(cmds, cmd)
		a.workload, cmd = a.workload.update(msg)
		cmds = append(cmds, cmd)
		if text := a.board.excluded(); text != "" {
			cmds = append(cmds, func() tea.Msg { return statusMsg{text: text, isError: true} })
		}
		return a, tea.Batch(cmds...)
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.editor.formActive {
		a.editor, cmd = a.editor.update(msg)
		return a, cmd
	}
	switch a.activeView {
	case viewGantt:
		a.gantt, cmd = a.gantt.update(msg)
	case viewWorkload:
		a.workload, cmd = a.workload.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.editor.formActive || (a.activeView == viewCalendar && a.calendar.formActive)
}

// toggle switches to v, or back to the chart when v is already shown.
func (a App) toggle(v viewState) viewState {
	if a.activeView == v {
		return viewGantt
	}
	return v
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewWorkload, viewGantt:
		return func() tea.Msg { return boardChangedMsg{} }
	case viewCalendar:
		return a.calendar.refresh()
	}
	return nil
}

// newTaskDay is the start offered for a new task: the selected task's
// end, or today.
func (a App) newTaskDay() time.Time {
	if t, ok := a.gantt.selected(); ok {
		return t.Finish
	}
	o := a.board.chart.Options()
	return o.Now().In(o.Location)
}

// saveDates writes a drag's result back to the store.
func (a App) saveDates(msg dateChangedMsg) tea.Cmd {
	s := a.store
	return func() tea.Msg {
		if err := s.UpdateTaskDates(msg.id, msg.start, msg.end); err != nil {
			return errStatus("Save dates: %v", err)
		}
		return statusMsg{text: fmt.Sprintf("%s: %s to %s", msg.id, dates.Canonical(msg.start), dates.Canonical(msg.end))}
	}
}

func (a App) deleteTask(id string) tea.Cmd {
	if err := a.store.DeleteTask(id); err != nil {
		return func() tea.Msg { return errStatus("Delete: %v", err) }
	}
	if err := a.board.reload(); err != nil {
		return func() tea.Msg { return errStatus("Reload: %v", err) }
	}
	return tea.Batch(
		func() tea.Msg { return boardChangedMsg{} },
		func() tea.Msg { return statusMsg{text: fmt.Sprintf("Deleted %q", id)} },
	)
}

func (a App) saveScroll() {
	_ = a.store.SetSetting("scroll_offset", strconv.FormatFloat(a.gantt.scroll, 'f', -1, 64))
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch {
	case a.editor.formActive:
		content = a.editor.view()
	case a.activeView == viewGantt:
		content = a.gantt.view()
	case a.activeView == viewWorkload:
		content = a.workload.view()
	case a.activeView == viewCalendar:
		content = a.calendar.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker(contentHeight)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("ganttr")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status.text != "" {
		style := mutedStyle
		if a.status.isError {
			style = errorStyle
		}
		status = style.Render(" " + a.status.text)
	}

	// Gesture indicator
	state := ""
	if st := a.board.chart.State(); st != gantt.Idle {
		state = warningStyle.Render(" ● " + st.String())
	}

	left := footerStyle.Render(helpView)
	right := state + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker(_ int) string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f.name))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the file before returning: the chart is only touched
// from the update loop.
func (a App) doExport(format int) tea.Cmd {
	f := exportFormats[format]
	dir := a.exportDir
	if dir == "" {
		dir, _ = os.UserHomeDir()
	}
	dateStr := time.Now().Format("2006-01-02")
	path := filepath.Join(dir, fmt.Sprintf("ganttr-export-%s.%s", dateStr, f.ext))

	if err := f.write(a.board.chart, path); err != nil {
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("%s error: %v", f.name, err), isError: true}
		}
	}
	return func() tea.Msg { return exportDoneMsg{path: path} }
}
