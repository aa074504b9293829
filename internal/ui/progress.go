package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"stracetui/internal/driver"
)

// fileState is where one input stands in the parse/resolve pipeline.
type fileState uint8

const (
	fileQueued fileState = iota
	fileParsing
	fileParsed // parsed, waiting for the resolve phase
	fileResolving
	fileDone
	fileFailed
)

func (s fileState) label() string {
	switch s {
	case fileParsing:
		return "parsing"
	case fileParsed:
		return "parsed"
	case fileResolving:
		return "resolving"
	case fileDone:
		return "done"
	case fileFailed:
		return "error"
	default:
		return "queued"
	}
}

func (s fileState) style() lipgloss.Style {
	switch s {
	case fileDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case fileFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case fileParsing, fileResolving:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

// weight is the share of the file's work finished in its current state.
// Разбор считается за 40%, символизация за остальные 60%.
func (item *fileItem) weight() float64 {
	switch item.state {
	case fileParsing:
		return 0.1
	case fileParsed:
		return 0.4
	case fileResolving:
		if item.total == 0 {
			return 0.4
		}
		return 0.4 + 0.6*float64(item.done)/float64(item.total)
	case fileDone, fileFailed:
		return 1
	default:
		return 0
	}
}

type fileItem struct {
	path    string
	state   fileState
	records int
	done    int // frame keys looked up
	total   int
	failed  int
	elapsed time.Duration
	err     error
}

// detail is the text after the file name: record and address counters.
func (item *fileItem) detail() string {
	switch item.state {
	case fileFailed:
		if item.err != nil {
			return item.err.Error()
		}
		return ""
	case fileResolving:
		s := fmt.Sprintf("%d/%d addresses", item.done, item.total)
		if item.failed > 0 {
			s += fmt.Sprintf(", %d failed", item.failed)
		}
		return s
	case fileParsed, fileDone:
		s := fmt.Sprintf("%d records", item.records)
		if item.total > 0 {
			s += fmt.Sprintf(", %d addresses", item.total)
			if item.failed > 0 {
				s += fmt.Sprintf(" (%d failed)", item.failed)
			}
		}
		if item.state == fileDone && item.elapsed > 0 {
			s += fmt.Sprintf(" in %s", item.elapsed.Round(time.Millisecond))
		}
		return s
	}
	return ""
}

type progressModel struct {
	title    string
	events   <-chan driver.Event
	spinner  spinner.Model
	bar      progress.Model
	items    []fileItem
	index    map[string]int
	phase    string // pipeline-wide stage, from events without a file
	width    int
	finished bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows parse and resolve
// progress per input file. The model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	items := make([]fileItem, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items[i] = fileItem{path: file}
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title
	if m.phase != "" {
		header = fmt.Sprintf("%s (%s)", header, m.phase)
	}
	if m.finished {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width/2, 20)
	for i := range m.items {
		item := &m.items[i]
		status := item.state.style().Render(fmt.Sprintf("%10s", item.state.label()))
		name := truncate(item.path, nameWidth)
		line := fmt.Sprintf("  %s %s", status, name)
		if d := item.detail(); d != "" {
			used := 2 + 10 + 1 + runewidth.StringWidth(name) + 2
			line += "  " + truncate(d, max(m.width-used, 10))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.finished {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// applyEvent moves the file named by ev to its new state and returns the
// command animating the overall bar.
func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == driver.StatusWorking {
			m.phase = stageVerb(ev.Stage)
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	item.elapsed += ev.Elapsed
	if ev.Records > 0 {
		item.records = ev.Records
	}

	switch ev.Status {
	case driver.StatusQueued:
		item.state = fileQueued
	case driver.StatusError:
		item.state = fileFailed
		item.err = ev.Err
	case driver.StatusDone:
		item.state = fileDone
	case driver.StatusWorking:
		switch {
		case ev.Stage == driver.StageResolve:
			item.state = fileResolving
		case ev.Elapsed > 0:
			// разбор закончен, впереди символизация
			item.state = fileParsed
		default:
			item.state = fileParsing
		}
	}
	if ev.Stage == driver.StageResolve && ev.Total > 0 {
		item.done, item.total, item.failed = ev.Done, ev.Total, ev.Failed
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	var sum float64
	for i := range m.items {
		sum += m.items[i].weight()
	}
	return sum / float64(len(m.items))
}

func stageVerb(stage driver.Stage) string {
	switch stage {
	case driver.StageParse:
		return "parsing"
	case driver.StageResolve:
		return "resolving"
	default:
		return ""
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
