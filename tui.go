package main

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hush/clipboard"
	"hush/engine"
	"hush/session"
	"hush/zone"
)

// TUI message types
type IntensityMsg struct{ Value float64 }
type TransitionMsg struct{ Transition zone.Transition }
type ProgressMsg struct{ Progress session.Progress }
type SessionStartedMsg struct{ ID string }
type SessionEndedMsg struct{ Record session.Record }
type NoVoiceMsg struct{}
type VoiceClearedMsg struct{}
type ConfigMsg struct{ Config zone.Config }
type DeviceLineMsg struct{ Text string }
type ErrorMsg struct{ Text string }
type copiedMsg struct{ err error }
type tickMsg time.Time

const (
	gaugeWidth    = 50
	thresholdStep = 5
	summaryBarMax = 20
)

type tuiModel struct {
	frame         int
	width, height int

	cfg     zone.Config
	name    string
	do      func(func(*engine.Engine)) bool
	copy    func(string) error
	level   float64
	state   zone.State
	message string
	emoji   string
	noVoice bool

	active     bool
	progress   session.Progress
	last       *session.Record
	copied     bool
	copyErr    string
	deviceLine string
	errLine    string
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var zoneStyles = map[zone.State]lipgloss.Style{
	zone.Silent:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	zone.Low:     lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	zone.Optimal: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	zone.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	zone.Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Bold(true)
	markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func newTUIModel(cfg zone.Config, name string, do func(func(*engine.Engine)) bool) tuiModel {
	msg, emoji := zone.Message(zone.Silent, name)
	return tuiModel{
		cfg:     cfg,
		name:    name,
		do:      do,
		copy:    clipboard.Copy,
		state:   zone.Silent,
		message: msg,
		emoji:   emoji,
	}
}

func NewTUIProgram(m tuiModel) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

// tuiSend delivers msg to the running program, if any.
func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case IntensityMsg:
		m.level = msg.Value

	case TransitionMsg:
		m.state = msg.Transition.To
		m.message = msg.Transition.Message
		m.emoji = msg.Transition.Emoji

	case ProgressMsg:
		m.progress = msg.Progress

	case SessionStartedMsg:
		m.active = true
		m.noVoice = false
		m.copied = false
		m.copyErr = ""
		m.progress = session.Progress{Total: "00:00", Green: "00:00", Success: "0%"}

	case SessionEndedMsg:
		m.active = false
		m.noVoice = false
		rec := msg.Record
		m.last = &rec

	case NoVoiceMsg:
		m.noVoice = true

	case VoiceClearedMsg:
		m.noVoice = false

	case ConfigMsg:
		m.cfg = msg.Config

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case ErrorMsg:
		m.errLine = msg.Text

	case copiedMsg:
		m.copied = msg.err == nil
		m.copyErr = ""
		if msg.err != nil {
			m.copyErr = msg.err.Error()
		}
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "s", " ":
		return m, m.request(toggleSession)
	case "c":
		if m.last == nil {
			return m, nil
		}
		text := m.last.Summary()
		copyFn := m.copy
		return m, func() tea.Msg { return copiedMsg{err: copyFn(text)} }
	case "[", "]", "{", "}":
		cmd := m.adjust(thresholdDeltas[msg.String()])
		return m, cmd
	}
	return m, nil
}

var thresholdDeltas = map[string][2]float64{
	"[": {-thresholdStep, 0},
	"]": {thresholdStep, 0},
	"{": {0, -thresholdStep},
	"}": {0, thresholdStep},
}

// adjust moves the thresholds locally for immediate feedback and returns
// the command handing the change to the engine, which replies with the
// normalized config.
func (m *tuiModel) adjust(d [2]float64) tea.Cmd {
	cfg := m.cfg
	cfg.Lower += d[0]
	cfg.Upper += d[1]
	m.cfg = cfg.Normalize()
	return m.request(func(e *engine.Engine) {
		applied := e.UpdateConfig(cfg)
		tuiSend(ConfigMsg{Config: applied})
	})
}

// request queues fn on the engine from a command goroutine. Update must
// not block on the engine queue while the engine blocks sending to us.
func (m tuiModel) request(fn func(*engine.Engine)) tea.Cmd {
	do := m.do
	if do == nil {
		return nil
	}
	return func() tea.Msg {
		do(fn)
		return nil
	}
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var lines []string
	lines = append(lines, titleStyle.Render("hush")+" "+dimStyle.Render("volume coach"))
	lines = append(lines, "")

	width := min(gaugeWidth, max(m.width-10, 10))
	lines = append(lines, renderGauge(m.level, m.state, width)+fmt.Sprintf(" %3.0f", m.level))
	lines = append(lines, renderScale(m.cfg, width))
	lines = append(lines, "")

	lines = append(lines, zoneStyles[m.state].Bold(true).Render(m.emoji+" "+m.message))
	if m.noVoice {
		lines = append(lines, warnStyle.Render("  ⚠ no voice detected, check your microphone"))
	}
	lines = append(lines, "")

	if m.active {
		dot := "●"
		if m.frame%2 == 1 {
			dot = "○"
		}
		status := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render(dot + " SESSION")
		lines = append(lines, status)
		lines = append(lines, fmt.Sprintf("time %s   in target %s   success %s   drops %d",
			m.progress.Total, m.progress.Green, m.progress.Success, m.progress.DropCount))
	} else {
		lines = append(lines, dimStyle.Render("○ STANDBY"))
	}

	if m.last != nil && !m.active {
		lines = append(lines, "")
		lines = append(lines, titleStyle.Render("Last session"))
		lines = append(lines, strings.Split(renderSummary(*m.last), "\n")...)
		switch {
		case m.copied:
			lines = append(lines, okStyle.Render("[✓ copied]"))
		case m.copyErr != "":
			lines = append(lines, warnStyle.Render("copy failed: "+m.copyErr))
		}
	}

	lines = append(lines, "")
	if m.deviceLine != "" {
		lines = append(lines, dimStyle.Render(m.deviceLine))
	}
	if m.errLine != "" {
		lines = append(lines, warnStyle.Render(m.errLine))
	}
	lines = append(lines, dimStyle.Render(fmt.Sprintf("thresholds %.0f-%.0f  sensitivity %.0f  dampening %.0f  hold %s",
		m.cfg.Lower, m.cfg.Upper, m.cfg.Sensitivity, m.cfg.Dampening, m.cfg.Persistence)))
	lines = append(lines, boldStyle.Render("s")+helpStyle.Render(" session  ")+
		boldStyle.Render("c")+helpStyle.Render(" copy  ")+
		boldStyle.Render("[ ]")+helpStyle.Render(" lower  ")+
		boldStyle.Render("{ }")+helpStyle.Render(" upper  ")+
		boldStyle.Render("q")+helpStyle.Render(" quit"))
	lines = append(lines, helpStyle.Render("hush "+version))

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		PaddingLeft(2).
		PaddingTop(1).
		Render(strings.Join(lines, "\n"))
}

// renderGauge draws v (0-100) as a horizontal bar coloured for state.
func renderGauge(v float64, state zone.State, width int) string {
	filled := cells(v, width)
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(zoneStyles[state].Render(strings.Repeat("█", filled)))
	b.WriteString(dimStyle.Render(strings.Repeat("░", width-filled)))
	b.WriteString("]")
	return b.String()
}

// renderScale marks the lower and upper thresholds under the gauge.
func renderScale(cfg zone.Config, width int) string {
	scale := []rune(strings.Repeat(" ", width+2))
	lo := cells(cfg.Lower, width)
	hi := cells(cfg.Upper, width)
	scale[lo+1] = '^'
	scale[hi+1] = '^'
	return markerStyle.Render(string(scale))
}

func cells(v float64, width int) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	n := int(math.Round(v / 100 * float64(width)))
	return min(n, width)
}

// renderSummary lists the session figures followed by a bar per state
// counting how often the session entered it.
func renderSummary(rec session.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "total %s   in target %s (%s)\n",
		session.FormatClock(rec.TotalDuration), session.FormatClock(rec.GreenZoneTime),
		session.FormatPercent(rec.SuccessRate()))
	fmt.Fprintf(&b, "peak %d   drops %d   consistency %d/100",
		rec.PeakIntensity, rec.DropCount, rec.ConsistencyScore)

	counts := rec.StateCounts()
	most := 0
	for _, n := range counts {
		most = max(most, n)
	}
	for _, s := range zone.States {
		if s == zone.Warning {
			continue
		}
		n := counts[s]
		bar := 0
		if most > 0 {
			bar = int(math.Ceil(float64(n) / float64(most) * summaryBarMax))
		}
		fmt.Fprintf(&b, "\n%-8s %s %d", s, zoneStyles[s].Render(strings.Repeat("▇", bar)), n)
	}
	return b.String()
}

// tuiSink forwards engine events to the program.
type tuiSink struct{}

func (tuiSink) Intensity(v float64)             { tuiSend(IntensityMsg{Value: v}) }
func (tuiSink) Transition(tr zone.Transition)   { tuiSend(TransitionMsg{Transition: tr}) }
func (tuiSink) Progress(p session.Progress)     { tuiSend(ProgressMsg{Progress: p}) }
func (tuiSink) SessionStarted(id string)        { tuiSend(SessionStartedMsg{ID: id}) }
func (tuiSink) SessionEnded(rec session.Record) { tuiSend(SessionEndedMsg{Record: rec}) }
func (tuiSink) NoVoiceWarning()                 { tuiSend(NoVoiceMsg{}) }
func (tuiSink) VoiceCleared()                   { tuiSend(VoiceClearedMsg{}) }
