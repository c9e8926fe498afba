package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ganttr/internal/dates"
	"github.com/sadopc/ganttr/internal/store"
)

const (
	kindIgnored = "ignored"
	kindHoliday = "holiday"
)

type calendarEntry struct {
	kind string
	store.CalendarDate
}

// calendarFields are the form values behind a pointer.
type calendarFields struct {
	kind  string
	date  string
	label string
}

// calendarModel lists the stored ignored days, holidays and settings.
type calendarModel struct {
	board  *board
	width  int
	height int

	entries  []calendarEntry
	settings []store.Setting
	cursor   int

	formActive bool
	form       *huh.Form
	fields     *calendarFields
}

func newCalendarModel(b *board) calendarModel {
	return calendarModel{board: b, fields: &calendarFields{}}
}

func (m *calendarModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type calendarDataMsg struct {
	entries  []calendarEntry
	settings []store.Setting
}

func (m calendarModel) refresh() tea.Cmd {
	s := m.board.store
	return func() tea.Msg {
		var entries []calendarEntry
		ignored, err := s.ListIgnoredDates()
		if err != nil {
			return errStatus("Load calendar: %v", err)
		}
		for _, d := range ignored {
			entries = append(entries, calendarEntry{kind: kindIgnored, CalendarDate: d})
		}
		holidays, err := s.ListHolidays()
		if err != nil {
			return errStatus("Load calendar: %v", err)
		}
		for _, d := range holidays {
			entries = append(entries, calendarEntry{kind: kindHoliday, CalendarDate: d})
		}
		settings, _ := s.GetAllSettings()
		return calendarDataMsg{entries: entries, settings: settings}
	}
}

func (m calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case calendarDataMsg:
		m.entries = msg.entries
		m.settings = msg.settings
		if m.cursor >= len(m.entries) {
			m.cursor = max(0, len(m.entries)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New), key.Matches(msg, keys.Enter):
			return m.showForm()
		case key.Matches(msg, keys.Delete):
			if len(m.entries) > 0 {
				return m, m.remove(m.entries[m.cursor])
			}
		}
	}
	return m, nil
}

func (m calendarModel) showForm() (calendarModel, tea.Cmd) {
	*m.fields = calendarFields{kind: kindHoliday}
	loc := m.board.chart.Options().Location

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Kind").
				Options(
					huh.NewOption("Holiday (highlight only)", kindHoliday),
					huh.NewOption("Ignored (excluded from durations)", kindIgnored),
				).Value(&m.fields.kind),
			huh.NewInput().Title("Date").Placeholder("2024-12-25").
				Value(&m.fields.date).Validate(dateField(loc, false)),
			huh.NewInput().Title("Label").Value(&m.fields.label),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m calendarModel) updateForm(msg tea.Msg) (calendarModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		if err := m.save(); err != nil {
			return m, func() tea.Msg { return errStatus("Save date: %v", err) }
		}
		return m, tea.Batch(m.refresh(), func() tea.Msg { return boardChangedMsg{} })
	}
	return m, cmd
}

// save stores the form's date and rebuilds the chart around it.
func (m calendarModel) save() error {
	s := m.board.store
	d, err := dates.Parse(m.fields.date, m.board.chart.Options().Location)
	if err != nil {
		return err
	}
	label := strings.TrimSpace(m.fields.label)
	if m.fields.kind == kindIgnored {
		err = s.AddIgnoredDate(d, label)
	} else {
		err = s.AddHoliday(d, label)
	}
	if err != nil {
		return err
	}
	return m.board.rebuild()
}

func (m calendarModel) remove(e calendarEntry) tea.Cmd {
	s := m.board.store
	var err error
	if e.kind == kindIgnored {
		err = s.RemoveIgnoredDate(e.Date)
	} else {
		err = s.RemoveHoliday(e.Date)
	}
	if err == nil {
		err = m.board.rebuild()
	}
	if err != nil {
		return func() tea.Msg { return errStatus("Remove date: %v", err) }
	}
	return tea.Batch(m.refresh(), func() tea.Msg { return boardChangedMsg{} })
}

func (m calendarModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Add Date")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Calendar"), "")

	if len(m.entries) == 0 {
		rows = append(rows, mutedStyle.Render("  No ignored days or holidays. Press n to add one."))
	}
	for i, e := range m.entries {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		kind := holidayStyle.Render(fmt.Sprintf("%-8s", e.kind))
		if e.kind == kindIgnored {
			kind = ignoredStyle.Render(fmt.Sprintf("%-8s", e.kind))
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s ", cursor, e.Date.Format("Mon 2006-01-02")))+kind+" "+mutedStyle.Render(e.Label))
	}

	rows = append(rows, "", titleStyle.Render("Settings"), "")
	for _, setting := range m.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "", mutedStyle.Render("  n: add date  d: remove  ↑/↓: select"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "move_dependencies":
		if v == "true" {
			return "on"
		}
		return "off"
	case "scroll_offset":
		return v + " px"
	}
	return v
}
