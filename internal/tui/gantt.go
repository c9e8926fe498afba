package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ganttr/internal/gantt"
)

const (
	// labelWidth is the task column left of the grid.
	labelWidth = 20
	// headerRows holds the upper and lower date labels.
	headerRows = 2

	doubleClickWindow = 400 * time.Millisecond

	epsilon = 1e-6
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellTick
	cellIgnored
	cellHoliday
	cellToday
	cellArrow
	cellBar
	cellProgress
	cellBarText
	cellProgressText
)

var cellGlyphs = map[cellKind]rune{
	cellEmpty:    ' ',
	cellTick:     '┊',
	cellIgnored:  '░',
	cellHoliday:  '·',
	cellToday:    '│',
	cellArrow:    '▸',
	cellBar:      '▒',
	cellProgress: '█',
}

type click struct {
	id string
	at time.Time
}

// ganttModel draws the chart on a character grid and turns mouse cells
// into chart coordinates. One cell is ColumnWidth/cells pixels wide; a
// task row maps to the vertical centre of its bar.
type ganttModel struct {
	board  *board
	width  int
	height int
	cells  int

	scroll    float64 // chart x at the left edge of the grid
	top       int     // first visible task row
	cursor    int
	lastClick click
	now       func() time.Time
}

func newGanttModel(b *board, cells int, now func() time.Time) ganttModel {
	if cells <= 0 {
		cells = 3
	}
	if now == nil {
		now = time.Now
	}
	return ganttModel{board: b, cells: cells, now: now}
}

func (g *ganttModel) setSize(w, h int) {
	g.width = w
	g.height = h
	g.clampScroll()
}

func (g ganttModel) chart() *gantt.Chart { return g.board.chart }

func (g ganttModel) cellPx() float64 {
	return g.chart().Scale().ColumnWidth / float64(g.cells)
}

func (g ganttModel) gridCols() int {
	return max(1, g.width-labelWidth)
}

// taskRows is the number of task rows that fit under the header and the
// popup.
func (g ganttModel) taskRows() int {
	rows := g.height - headerRows
	if g.board.popup.visible() {
		rows -= lipgloss.Height(g.board.popup.view(g.chart(), g.width))
	}
	return max(1, rows)
}

// toChart converts a cell of the view into chart coordinates at the
// cell's centre. Cells in the task column map to the grid's first cell.
func (g ganttModel) toChart(col, row int) (x, y float64) {
	col = max(col, labelWidth)
	x = g.scroll + (float64(col-labelWidth)+0.5)*g.cellPx()
	o := g.chart().Options()
	if row < headerRows {
		return x, o.HeaderHeight() / 2
	}
	return x, g.chart().RowY(row-headerRows+g.top) + o.BarHeight/2
}

// rowAt returns the task row under a screen row.
func (g ganttModel) rowAt(row int) (int, bool) {
	i := row - headerRows + g.top
	if row < headerRows || i >= len(g.chart().Bars()) {
		return 0, false
	}
	return i, true
}

// --- Scrolling ---

func (g *ganttModel) maxScroll() float64 {
	return math.Max(0, g.chart().Width()-float64(g.gridCols())*g.cellPx())
}

func (g *ganttModel) clampScroll() {
	g.scroll = math.Min(math.Max(g.scroll, 0), g.maxScroll())
}

// scrollBy moves the viewport. Running off either end of an infinitely
// padded chart extends its range.
func (g *ganttModel) scrollBy(dx float64) {
	c := g.chart()
	next := g.scroll + dx
	if c.Options().InfinitePadding {
		switch {
		case next < 0:
			if shift, err := c.ExtendRange(gantt.Backward); err == nil {
				next += shift
				g.board.view.Build()
			}
		case next > g.maxScroll():
			if _, err := c.ExtendRange(gantt.Forward); err == nil {
				g.board.view.Build()
			}
		}
	}
	g.scroll = next
	g.clampScroll()
}

// scrollTo centres t in the grid.
func (g *ganttModel) scrollTo(t time.Time) {
	c := g.chart()
	g.scroll = c.Scale().ToX(t) - float64(g.gridCols())*g.cellPx()/2
	g.clampScroll()
}

func (g *ganttModel) follow() {
	n := len(g.chart().Bars())
	g.cursor = min(max(g.cursor, 0), max(n-1, 0))
	rows := g.taskRows()
	if g.cursor < g.top {
		g.top = g.cursor
	}
	if g.cursor >= g.top+rows {
		g.top = g.cursor - rows + 1
	}
	g.top = max(0, min(g.top, max(n-rows, 0)))
}

// selected returns the task under the cursor.
func (g ganttModel) selected() (*gantt.Task, bool) {
	bars := g.chart().Bars()
	if g.cursor < 0 || g.cursor >= len(bars) {
		return nil, false
	}
	return bars[g.cursor].Task, true
}

func (g *ganttModel) selectTask(id string) {
	for i, b := range g.chart().Bars() {
		if b.Task.ID == id {
			g.cursor = i
			g.follow()
			return
		}
	}
}

// --- Update ---

func (g ganttModel) update(msg tea.Msg) (ganttModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return g.updateMouse(msg)
	case tea.KeyMsg:
		return g.updateKeys(msg)
	case boardChangedMsg:
		g.follow()
		g.clampScroll()
	}
	return g, nil
}

func (g ganttModel) updateKeys(msg tea.KeyMsg) (ganttModel, tea.Cmd) {
	c := g.chart()
	var err error
	switch {
	case key.Matches(msg, keys.Up):
		g.cursor--
		g.follow()
	case key.Matches(msg, keys.Down):
		g.cursor++
		g.follow()
	case key.Matches(msg, keys.Left):
		g.scrollBy(-c.Scale().ColumnWidth)
	case key.Matches(msg, keys.Right):
		g.scrollBy(c.Scale().ColumnWidth)
	case key.Matches(msg, keys.Today):
		o := c.Options()
		g.scrollTo(o.Now().In(o.Location))
	case key.Matches(msg, keys.ViewMode):
		err = g.changeScale(int(msg.String()[0] - '1'))
	case key.Matches(msg, keys.Earlier), key.Matches(msg, keys.Later):
		err = g.extend(key.Matches(msg, keys.Earlier))
	case key.Matches(msg, keys.MoveDeps):
		on := !c.Options().MoveDependencies
		c.SetMoveDependencies(on)
		s := g.board.store
		return g, func() tea.Msg {
			if err := s.SetBoolSetting("move_dependencies", on); err != nil {
				return errStatus("Save setting: %v", err)
			}
			if on {
				return statusMsg{text: "Dependents move with their predecessors"}
			}
			return statusMsg{text: "Dependents stay in place"}
		}
	case key.Matches(msg, keys.Enter):
		if t, ok := g.selected(); ok {
			b, _ := c.Bar(t.ID)
			g.board.popup.Show(gantt.PopupTrigger{Task: t, X: b.X, Y: b.Y + b.Height})
		}
	case key.Matches(msg, keys.Back):
		if c.State() != gantt.Idle {
			err = g.board.view.Cancel()
		} else {
			c.HidePopup()
			g.board.popup.Hide()
		}
	}
	cmds := g.board.drain()
	if err != nil {
		cmds = append(cmds, statusCmd(err))
	}
	return g, tea.Batch(cmds...)
}

// changeScale switches to the i-th view mode, keeping the date at the left
// edge in view.
func (g *ganttModel) changeScale(i int) error {
	c := g.chart()
	modes := c.Options().ViewModes
	if i < 0 || i >= len(modes) {
		return nil
	}
	left := c.Scale().ToDate(g.scroll)
	if err := c.ChangeScale(modes[i].Name); err != nil {
		return err
	}
	g.board.view.Build()
	g.scroll = c.Scale().ToX(left)
	g.clampScroll()
	return nil
}

func (g *ganttModel) extend(before bool) error {
	c := g.chart()
	dir := gantt.Forward
	if before {
		dir = gantt.Backward
	}
	shift, err := c.ExtendRange(dir)
	if err != nil {
		return err
	}
	g.scroll += shift
	g.board.view.Build()
	g.clampScroll()
	return nil
}

func (g ganttModel) updateMouse(msg tea.MouseMsg) (ganttModel, tea.Cmd) {
	c := g.chart()
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		g.top = max(0, g.top-1)
		return g, nil
	case tea.MouseButtonWheelDown:
		g.top = min(g.top+1, max(len(c.Bars())-g.taskRows(), 0))
		return g, nil
	case tea.MouseButtonWheelLeft:
		g.scrollBy(-c.Scale().ColumnWidth)
		return g, nil
	case tea.MouseButtonWheelRight:
		g.scrollBy(c.Scale().ColumnWidth)
		return g, nil
	}

	x, y := g.toChart(msg.X, msg.Y)
	var err error
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return g, nil
		}
		if msg.X < labelWidth {
			if i, ok := g.rowAt(msg.Y); ok {
				g.cursor = i
				g.follow()
			}
			return g, nil
		}
		id, _, hit := c.HitTest(x, y)
		now := g.now()
		if hit && g.lastClick.id == id && now.Sub(g.lastClick.at) <= doubleClickWindow {
			g.lastClick = click{}
			err = g.board.view.Dispatch("dblclick", x, y, msg.Alt)
			break
		}
		if hit {
			g.lastClick = click{id: id, at: now}
		}
		err = g.board.view.Dispatch("pointerdown", x, y, msg.Alt)
	case tea.MouseActionMotion:
		err = g.board.view.Dispatch("pointermove", x, y, msg.Alt)
	case tea.MouseActionRelease:
		err = g.board.view.Dispatch("pointerup", x, y, msg.Alt)
	}

	cmds := g.board.drain()
	if err != nil {
		cmds = append(cmds, statusCmd(err))
	}
	return g, tea.Batch(cmds...)
}

func statusCmd(err error) tea.Cmd {
	text := err.Error()
	if errors.Is(err, gantt.ErrReadonly) {
		text = "Chart is read-only"
	}
	return func() tea.Msg { return statusMsg{text: text, isError: true} }
}

// --- View ---

func (g ganttModel) view() string {
	c := g.chart()
	cols := g.gridCols()
	upper, lower := g.renderHeader(cols)

	mode := c.ViewMode().Name
	deps := "deps: off"
	if c.Options().MoveDependencies {
		deps = "deps: on"
	}
	rows := []string{
		titleStyle.Render(fmt.Sprintf("%-*s", labelWidth, truncate(mode, labelWidth))) + upper,
		mutedStyle.Render(fmt.Sprintf("%-*s", labelWidth, deps)) + lower,
	}

	bars := c.Bars()
	if len(bars) == 0 {
		rows = append(rows, "", mutedStyle.Render("  No tasks yet. Press n to add one."))
	}
	active := g.activeIDs()
	for i := g.top; i < len(bars) && i < g.top+g.taskRows(); i++ {
		rows = append(rows, g.renderLabel(i)+g.renderRow(i, cols, active[bars[i].Task.ID]))
	}
	if p := g.board.popup.view(c, g.width); p != "" {
		for len(rows) < g.height-lipgloss.Height(p) {
			rows = append(rows, "")
		}
		rows = append(rows, p)
	}
	return strings.Join(rows, "\n")
}

func (g ganttModel) activeIDs() map[string]bool {
	s, ok := g.chart().Session()
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(s.Affected))
	for _, id := range s.Affected {
		out[id] = true
	}
	return out
}

// renderHeader lays the view mode's labels out over the visible cells.
// Upper labels start at their column; lower labels are centred and cut to
// the column.
func (g ganttModel) renderHeader(cols int) (string, string) {
	c := g.chart()
	upper := blankRunes(cols)
	lower := blankRunes(cols)
	cw := c.Scale().ColumnWidth
	cp := g.cellPx()
	mode := c.ViewMode()

	var prev time.Time
	for i, d := range c.Dates() {
		u, l := mode.Labels(d, prev)
		prev = d
		cell := int(math.Floor((float64(i)*cw-g.scroll)/cp + epsilon))
		if cell >= cols {
			break
		}
		if u != "" {
			place(upper, cell, u)
		}
		if l != "" {
			l = string([]rune(l)[:min(len([]rune(l)), g.cells)])
			place(lower, cell+(g.cells-len([]rune(l)))/2, l)
		}
	}
	return upperStyle.Render(string(upper)), lowerStyle.Render(string(lower))
}

func blankRunes(n int) []rune {
	r := make([]rune, n)
	for i := range r {
		r[i] = ' '
	}
	return r
}

func place(line []rune, at int, s string) {
	for i, r := range []rune(s) {
		if at+i >= 0 && at+i < len(line) {
			line[at+i] = r
		}
	}
}

func (g ganttModel) renderLabel(i int) string {
	t := g.chart().Bars()[i].Task
	name := truncate(t.Name, labelWidth-7)
	if name == "" {
		name = truncate(t.ID, labelWidth-7)
	}
	text := fmt.Sprintf("%-*s %3d%%", labelWidth-7, name, t.Progress)
	if i == g.cursor {
		return selectedItemStyle.Render("> " + text)
	}
	return normalItemStyle.Render("  " + text)
}

// cellKinds classifies every visible cell of a task row by what lies under
// its centre.
func (g ganttModel) cellKinds(i, cols int) ([]cellKind, []rune) {
	c := g.chart()
	b := c.Bars()[i]
	cp := g.cellPx()
	incoming := len(c.Graph().Predecessors(b.Task.ID)) > 0

	kinds := make([]cellKind, cols)
	glyphs := make([]rune, cols)
	first, last := -1, -1
	for j := 0; j < cols; j++ {
		x := g.scroll + (float64(j)+0.5)*cp
		k := g.background(x)
		switch {
		case x >= b.X && x < b.EndX():
			k = cellBar
			if x < b.ProgressEndX() {
				k = cellProgress
			}
			if first < 0 {
				first = j
			}
			last = j
		case incoming && x < b.X && x+cp >= b.X:
			k = cellArrow
		}
		kinds[j] = k
		glyphs[j] = cellGlyphs[k]
	}

	// the name goes inside the bar when it fits with a cell to spare on
	// each side
	name := []rune(b.Task.Name)
	if first >= 0 && len(name) > 0 && last-first+1 >= len(name)+2 {
		for n, r := range name {
			j := first + 1 + n
			glyphs[j] = r
			if kinds[j] == cellProgress {
				kinds[j] = cellProgressText
			} else {
				kinds[j] = cellBarText
			}
		}
	}
	return kinds, glyphs
}

func (g ganttModel) background(x float64) cellKind {
	c := g.chart()
	if _, ok := c.Tracker().RegionAt(x, gantt.Backward); ok {
		return cellIgnored
	}
	s := c.Scale()
	d := s.ToDate(x)
	if c.IsHoliday(d) {
		return cellHoliday
	}
	o := c.Options()
	today := o.Now().In(o.Location)
	if d.Year() == today.Year() && d.YearDay() == today.YearDay() && s.DayWidth() >= g.cellPx()-epsilon {
		return cellToday
	}
	// a column boundary inside [x-cp/2, x+cp/2) gets a tick
	cw, from := s.ColumnWidth, x-g.cellPx()/2
	if next := math.Ceil(from/cw-epsilon) * cw; next < from+g.cellPx()-epsilon {
		return cellTick
	}
	return cellEmpty
}

func (g ganttModel) renderRow(i, cols int, active bool) string {
	kinds, glyphs := g.cellKinds(i, cols)
	color := barColor(i, active)
	styles := map[cellKind]lipgloss.Style{
		cellEmpty:        lipgloss.NewStyle(),
		cellTick:         tickStyle,
		cellIgnored:      ignoredStyle,
		cellHoliday:      holidayStyle,
		cellToday:        todayStyle,
		cellArrow:        arrowStyle,
		cellBar:          lipgloss.NewStyle().Foreground(color).Faint(true),
		cellProgress:     lipgloss.NewStyle().Foreground(color),
		cellBarText:      lipgloss.NewStyle().Foreground(colorFg).Background(colorSubtle),
		cellProgressText: lipgloss.NewStyle().Foreground(colorBg).Background(color).Bold(true),
	}

	var b strings.Builder
	for start := 0; start < len(kinds); {
		end := start + 1
		for end < len(kinds) && kinds[end] == kinds[start] {
			end++
		}
		b.WriteString(styles[kinds[start]].Render(string(glyphs[start:end])))
		start = end
	}
	return b.String()
}
