package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"stracetui/internal/model"
	"stracetui/internal/symbolize"
)

type lineKind uint8

const (
	lineHeader lineKind = iota
	lineArgs
	lineReturn
	lineErrno
	lineSignal
	lineExit
	lineBacktrace
	lineFrame
	lineResolved
)

type displayLine struct {
	kind   lineKind
	record int
	frame  int
}

type frameRef struct {
	record int
	frame  int
}

// frameState tracks on-demand resolution of one frame.
type frameState uint8

const (
	frameIdle frameState = iota
	framePending
	frameUnknown // symbolizer answered ??
	frameFailed
)

type resolvedMsg symbolize.Response
type workerClosedMsg struct{}

// Viewer is the interactive record browser. Expanding a backtrace submits
// its frames to the resolver worker; answers arrive asynchronously and are
// merged into the records as they come.
type Viewer struct {
	title   string
	records []model.CallRecord
	summary model.Summary
	worker  *symbolize.Worker

	lines    []displayLine
	selected int
	offset   int
	width    int
	height   int

	expanded   map[int]bool
	expandedBT map[int]bool
	frames     map[frameRef]frameState
	failures   map[frameRef]string

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	lanes    map[int]lipgloss.Color
	showHelp bool
	quitting bool
	status   string
}

// NewViewer builds the browser over records. worker may be nil, in which
// case frames are shown unresolved.
func NewViewer(title string, records []model.CallRecord, worker *symbolize.Worker) *Viewer {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	var order []int
	seen := make(map[int]bool)
	for i := range records {
		if pid := records[i].PID; !seen[pid] {
			seen[pid] = true
			order = append(order, pid)
		}
	}

	v := &Viewer{
		title:      title,
		records:    records,
		summary:    model.Summarize(records),
		worker:     worker,
		width:      80,
		height:     24,
		expanded:   make(map[int]bool),
		expandedBT: make(map[int]bool),
		frames:     make(map[frameRef]frameState),
		failures:   make(map[frameRef]string),
		keys:       defaultKeyMap(),
		help:       help.New(),
		spinner:    sp,
		lanes:      processLanes(order),
	}
	v.rebuild()
	return v
}

// Records returns the records with whatever frames were resolved so far.
func (v *Viewer) Records() []model.CallRecord {
	return v.records
}

func (v *Viewer) Init() tea.Cmd {
	if v.worker == nil {
		return nil
	}
	return tea.Batch(v.spinner.Tick, v.listen())
}

func (v *Viewer) listen() tea.Cmd {
	responses := v.worker.Responses()
	return func() tea.Msg {
		resp, ok := <-responses
		if !ok {
			return workerClosedMsg{}
		}
		return resolvedMsg(resp)
	}
}

func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			v.width = msg.Width
		}
		if msg.Height > 0 {
			v.height = msg.Height
		}
		v.help.Width = v.width
		v.ensureVisible()
		return v, nil
	case resolvedMsg:
		v.applyResolution(symbolize.Response(msg))
		return v, v.listen()
	case workerClosedMsg:
		v.worker = nil
		return v, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *Viewer) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.showHelp {
		if key.Matches(msg, v.keys.Help) || msg.Type == tea.KeyEsc {
			v.showHelp = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		v.quitting = true
		return tea.Quit
	case key.Matches(msg, v.keys.Help):
		v.showHelp = true
	case key.Matches(msg, v.keys.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(msg, v.keys.Down):
		if v.selected+1 < len(v.lines) {
			v.selected++
		}
	case key.Matches(msg, v.keys.PageUp):
		v.scrollPage(true, false)
	case key.Matches(msg, v.keys.PageDown):
		v.scrollPage(false, false)
	case key.Matches(msg, v.keys.HalfUp):
		v.scrollPage(true, true)
	case key.Matches(msg, v.keys.HalfDown):
		v.scrollPage(false, true)
	case key.Matches(msg, v.keys.Top):
		v.selected = 0
	case key.Matches(msg, v.keys.Bottom):
		if len(v.lines) > 0 {
			v.selected = len(v.lines) - 1
		}
	case key.Matches(msg, v.keys.Toggle):
		v.toggle()
	case key.Matches(msg, v.keys.Collapse):
		v.collapseCurrent()
	case key.Matches(msg, v.keys.ExpandAll):
		v.keepEntry(func() {
			for i := range v.records {
				v.expanded[i] = true
			}
		})
	case key.Matches(msg, v.keys.CollapseAll):
		v.keepEntry(func() {
			clear(v.expanded)
			clear(v.expandedBT)
		})
	case key.Matches(msg, v.keys.Resolve):
		if ln, ok := v.current(); ok {
			v.requestFrames(ln.record)
		}
	case key.Matches(msg, v.keys.ResolveAll):
		for i := range v.records {
			v.requestFrames(i)
		}
	}
	v.ensureVisible()
	return nil
}

// pageSize is the number of record lines that fit above the status bar.
func (v *Viewer) pageSize() int {
	return max(v.height-2, 1)
}

func (v *Viewer) current() (displayLine, bool) {
	if v.selected < 0 || v.selected >= len(v.lines) {
		return displayLine{}, false
	}
	return v.lines[v.selected], true
}

func (v *Viewer) scrollPage(up, half bool) {
	if len(v.lines) == 0 {
		return
	}
	step := v.pageSize()
	if half {
		step = max(step/2, 1)
	}
	if up {
		v.offset = max(v.offset-step, 0)
		v.selected = max(v.selected-step, 0)
		return
	}
	maxOffset := max(len(v.lines)-v.pageSize(), 0)
	v.offset = min(v.offset+step, maxOffset)
	v.selected = min(v.selected+step, len(v.lines)-1)
}

func (v *Viewer) ensureVisible() {
	page := v.pageSize()
	if v.selected < v.offset {
		v.offset = v.selected
	}
	if v.selected >= v.offset+page {
		v.offset = v.selected - page + 1
	}
	if maxOffset := max(len(v.lines)-page, 0); v.offset > maxOffset {
		v.offset = maxOffset
	}
}

func (v *Viewer) toggle() {
	ln, ok := v.current()
	if !ok {
		return
	}
	switch ln.kind {
	case lineHeader:
		if v.expanded[ln.record] {
			delete(v.expanded, ln.record)
			delete(v.expandedBT, ln.record)
		} else {
			v.expanded[ln.record] = true
		}
	case lineBacktrace:
		if v.expandedBT[ln.record] {
			delete(v.expandedBT, ln.record)
		} else {
			v.expandedBT[ln.record] = true
			v.requestFrames(ln.record)
		}
	default:
		return
	}
	v.rebuild()
}

func (v *Viewer) collapseCurrent() {
	ln, ok := v.current()
	if !ok {
		return
	}
	if ln.kind == lineBacktrace {
		delete(v.expandedBT, ln.record)
		v.rebuild()
		return
	}
	delete(v.expanded, ln.record)
	delete(v.expandedBT, ln.record)
	v.rebuild()
	v.selectRecord(ln.record)
}

// keepEntry applies change and keeps the cursor on the same record at the
// same screen row.
func (v *Viewer) keepEntry(change func()) {
	ln, ok := v.current()
	row := v.selected - v.offset
	change()
	v.rebuild()
	if !ok {
		return
	}
	v.selectRecord(ln.record)
	v.offset = max(v.selected-row, 0)
}

func (v *Viewer) selectRecord(record int) {
	for i, ln := range v.lines {
		if ln.record == record && ln.kind == lineHeader {
			v.selected = i
			return
		}
	}
}

// requestFrames submits every idle frame of record to the worker. Frames
// that do not fit in the queue stay idle and are retried on the next request.
func (v *Viewer) requestFrames(record int) {
	if v.worker == nil {
		return
	}
	bt := v.records[record].Backtrace
	for i := range bt {
		ref := frameRef{record: record, frame: i}
		if bt[i].Resolved != nil || v.frames[ref] != frameIdle {
			continue
		}
		req := symbolize.Request{Record: record, Frame: i, Key: bt[i].Key()}
		if !v.worker.Submit(req) {
			v.status = "resolver busy, press r to retry"
			return
		}
		v.frames[ref] = framePending
	}
}

func (v *Viewer) applyResolution(resp symbolize.Response) {
	if resp.Record < 0 || resp.Record >= len(v.records) {
		return
	}
	bt := v.records[resp.Record].Backtrace
	if resp.Frame < 0 || resp.Frame >= len(bt) {
		return
	}
	ref := frameRef{record: resp.Record, frame: resp.Frame}
	switch {
	case resp.Err != nil:
		v.frames[ref] = frameFailed
		v.failures[ref] = resp.Err.Error()
	case resp.Location == nil:
		v.frames[ref] = frameUnknown
	default:
		bt[resp.Frame].Resolved = resp.Location
		delete(v.frames, ref)
	}
	v.rebuild()
}

func (v *Viewer) rebuild() {
	v.lines = v.lines[:0]
	for i := range v.records {
		r := &v.records[i]
		v.lines = append(v.lines, displayLine{kind: lineHeader, record: i})
		if !v.expanded[i] {
			continue
		}
		add := func(k lineKind) { v.lines = append(v.lines, displayLine{kind: k, record: i}) }
		if r.Arguments != "" {
			add(lineArgs)
		}
		if r.ReturnValue != nil {
			add(lineReturn)
		}
		if r.Error != nil {
			add(lineErrno)
		}
		if r.Signal != nil {
			add(lineSignal)
		}
		if r.Exit != nil {
			add(lineExit)
		}
		if len(r.Backtrace) == 0 {
			continue
		}
		add(lineBacktrace)
		if !v.expandedBT[i] {
			continue
		}
		for j := range r.Backtrace {
			v.lines = append(v.lines, displayLine{kind: lineFrame, record: i, frame: j})
			if r.Backtrace[j].Resolved != nil || v.frames[frameRef{i, j}] != frameIdle {
				v.lines = append(v.lines, displayLine{kind: lineResolved, record: i, frame: j})
			}
		}
	}
	if v.selected >= len(v.lines) {
		v.selected = max(len(v.lines)-1, 0)
	}
}

var (
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	barStyle      = lipgloss.NewStyle().Background(lipgloss.Color("8")).Foreground(lipgloss.Color("15"))
)

func (v *Viewer) View() string {
	if v.quitting {
		return ""
	}
	if v.showHelp {
		h := v.help
		h.ShowAll = true
		return lipgloss.NewStyle().Bold(true).Render(v.title+" - keys") + "\n\n" + h.View(v.keys) + "\n\n" +
			dimStyle.Render("press ? or esc to close")
	}

	var b strings.Builder
	page := v.pageSize()
	end := min(v.offset+page, len(v.lines))
	for i := v.offset; i < end; i++ {
		text := v.renderLine(v.lines[i])
		if i == v.selected {
			text = selectedStyle.Render(runewidth.FillRight(plainLine(v, v.lines[i]), v.width))
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	for i := end - v.offset; i < page; i++ {
		b.WriteByte('\n')
	}
	b.WriteString(v.statusBar())
	return b.String()
}

func (v *Viewer) statusBar() string {
	pos := "0/0"
	if len(v.lines) > 0 {
		pos = strconv.Itoa(v.selected+1) + "/" + strconv.Itoa(len(v.lines))
	}
	left := fmt.Sprintf(" %s  %d calls, %d failed, %d signals, %d processes",
		v.title, v.summary.TotalSyscalls, v.summary.FailedSyscalls, v.summary.Signals, len(v.summary.UniquePIDs))
	if v.status != "" {
		left += "  " + v.status
	}
	right := pos + "  ? help "
	gap := v.width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		left = runewidth.Truncate(left, max(v.width-runewidth.StringWidth(right)-1, 0), "…")
		gap = 1
	}
	return barStyle.Render(left + strings.Repeat(" ", gap) + right)
}

// plainLine renders ln without styles, truncated to the view width.
func plainLine(v *Viewer, ln displayLine) string {
	return runewidth.Truncate(lineText(v, ln), v.width, "…")
}

func (v *Viewer) renderLine(ln displayLine) string {
	text := plainLine(v, ln)
	r := &v.records[ln.record]
	switch ln.kind {
	case lineHeader:
		style := lipgloss.NewStyle().Foreground(CategoryOf(r.Name).Color())
		switch {
		case r.Signal != nil:
			style = style.Foreground(lipgloss.Color("9"))
		case r.Exit != nil:
			style = style.Foreground(lipgloss.Color("12")).Bold(true)
		case r.Failed():
			style = errStyle
		case r.Incomplete():
			style = pendingStyle
		}
		if color, ok := v.lanes[r.PID]; ok && r.PID != model.NoPID {
			marker := lipgloss.NewStyle().Foreground(color).Render("┃ ")
			return marker + style.Render(runewidth.Truncate(lineText(v, ln), max(v.width-2, 0), "…"))
		}
		return style.Render(text)
	case lineErrno:
		return errStyle.Render(text)
	case lineFrame, lineBacktrace:
		return dimStyle.Render(text)
	case lineResolved:
		switch v.frames[frameRef{ln.record, ln.frame}] {
		case framePending:
			return pendingStyle.Render(v.spinner.View() + text)
		case frameFailed, frameUnknown:
			return errStyle.Render(text)
		}
		return okStyle.Render(text)
	}
	return text
}

func lineText(v *Viewer, ln displayLine) string {
	r := &v.records[ln.record]
	switch ln.kind {
	case lineHeader:
		return headerText(r, v.expanded[ln.record])
	case lineArgs:
		return "    args:     " + r.Arguments
	case lineReturn:
		return "    return:   " + *r.ReturnValue
	case lineErrno:
		msg := "    error:    " + r.Error.Code
		if r.Error.Message != "" {
			msg += " (" + r.Error.Message + ")"
		}
		return msg
	case lineSignal:
		return "    signal:   " + r.Signal.Name + " " + r.Signal.Detail
	case lineExit:
		if r.Exit.CoreDumped {
			return "    exit:     " + r.Title() + " (core dumped)"
		}
		return "    exit:     " + r.Title()
	case lineBacktrace:
		arrow := "▸"
		if v.expandedBT[ln.record] {
			arrow = "▾"
		}
		return fmt.Sprintf("    %s backtrace (%d frames)", arrow, len(r.Backtrace))
	case lineFrame:
		f := &r.Backtrace[ln.frame]
		return fmt.Sprintf("      #%-2d %s", ln.frame, f.String())
	case lineResolved:
		ref := frameRef{ln.record, ln.frame}
		switch v.frames[ref] {
		case framePending:
			return "          resolving…"
		case frameUnknown:
			return "          at ??"
		case frameFailed:
			return "          " + v.failures[ref]
		}
		return "          at " + r.Backtrace[ln.frame].Resolved.String()
	}
	return ""
}

func headerText(r *model.CallRecord, expanded bool) string {
	var b strings.Builder
	if expanded {
		b.WriteString("▾ ")
	} else {
		b.WriteString("▸ ")
	}
	if r.PID != model.NoPID {
		b.WriteString("[" + strconv.Itoa(r.PID) + "] ")
	}
	if r.Timestamp != "" {
		b.WriteString(r.Timestamp + " ")
	}
	switch r.Kind() {
	case model.KindSignal:
		b.WriteString("--- " + r.Signal.Name + " ---")
		return b.String()
	case model.KindExit:
		b.WriteString(r.Title())
		return b.String()
	}
	b.WriteString(r.Name + "(" + r.Arguments + ")")
	switch {
	case r.Incomplete():
		b.WriteString(" <unfinished ...>")
	case r.ReturnValue != nil:
		b.WriteString(" = " + *r.ReturnValue)
		if r.Error != nil {
			b.WriteString(" " + r.Error.Code)
		}
	}
	if n := len(r.Backtrace); n > 0 {
		b.WriteString(fmt.Sprintf("  [%d frames]", n))
	}
	return b.String()
}
