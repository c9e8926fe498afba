package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// viewState represents the currently active view.
type viewState int

const (
	viewGantt viewState = iota
	viewWorkload
	viewCalendar
)

var viewNames = []string{"Gantt", "Workload", "Calendar"}

// --- Messages ---

// Chart notifications, queued by the board while an event is dispatched.

type dateChangedMsg struct {
	id         string
	start, end time.Time
}

type progressChangedMsg struct {
	id       string
	progress int
}

type viewChangedMsg struct {
	mode string
}

type taskClickedMsg struct {
	id string
}

type taskDoubleClickedMsg struct {
	id string
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// boardChangedMsg asks every view to re-read the chart and the store.
type boardChangedMsg struct{}

// --- Helpers ---

func errStatus(format string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf(format, err), isError: true}
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}

func formatDays(d float64) string {
	if d == float64(int(d)) {
		return fmt.Sprintf("%dd", int(d))
	}
	return fmt.Sprintf("%.1fd", d)
}

func joinIDs(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
