//go:build gui

package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"hush/session"
	"hush/zone"
)

// App is the fyne window. It implements engine.Sink; every method is safe
// to call from the engine goroutine.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	gauge   *GaugeWidget
	message *widget.Label
	stats   *widget.Label
	toggle  *widget.Button

	cfg      zone.Config
	onReady  func()
	onToggle func()
}

// NewApp builds the window model. onReady runs in its own goroutine once
// the event loop is about to start; onToggle runs when the session button
// is pressed.
func NewApp(cfg zone.Config, onReady, onToggle func()) *App {
	return &App{cfg: cfg, onReady: onReady, onToggle: onToggle}
}

func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.hush.gui")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	if desk, ok := a.fyneApp.(desktop.App); ok {
		menu := fyne.NewMenu("hush",
			fyne.NewMenuItem("Start / end session", a.onToggle),
			fyne.NewMenuItem("Quit", func() {
				a.fyneApp.Quit()
			}),
		)
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(fyne.NewStaticResource("tray.png", iconPNG(22)))
	}

	a.window = a.fyneApp.NewWindow("hush")
	a.gauge = NewGaugeWidget(a.cfg)
	msg, emoji := zone.Message(zone.Silent, "")
	a.message = widget.NewLabel(emoji + " " + msg)
	a.stats = widget.NewLabel(progressText(session.Progress{Total: "00:00", Green: "00:00", Success: "0%"}))
	a.toggle = widget.NewButton("Start session", a.onToggle)

	a.window.SetContent(container.NewVBox(a.gauge, a.message, a.stats, a.toggle))
	a.window.SetFixedSize(true)
	a.window.Show()

	go a.onReady()

	a.fyneApp.Run()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		fyne.Do(a.fyneApp.Quit)
	}
}

func progressText(p session.Progress) string {
	return fmt.Sprintf("time %s   in target %s   success %s   drops %d", p.Total, p.Green, p.Success, p.DropCount)
}

func (a *App) setText(l *widget.Label, text string) {
	fyne.Do(func() { l.SetText(text) })
}

func (a *App) SetThresholds(cfg zone.Config) {
	a.gauge.SetThresholds(cfg.Lower, cfg.Upper)
}

func (a *App) Intensity(v float64) {
	a.gauge.SetLevel(v)
}

func (a *App) Transition(tr zone.Transition) {
	a.gauge.SetState(tr.To)
	a.setText(a.message, tr.Emoji+" "+tr.Message)
}

func (a *App) Progress(p session.Progress) {
	a.setText(a.stats, progressText(p))
}

func (a *App) SessionStarted(id string) {
	fyne.Do(func() { a.toggle.SetText("End session") })
}

func (a *App) SessionEnded(rec session.Record) {
	fyne.Do(func() { a.toggle.SetText("Start session") })
	a.setText(a.stats, fmt.Sprintf("last session: %s in target of %s (%s), consistency %d",
		session.FormatClock(rec.GreenZoneTime), session.FormatClock(rec.TotalDuration),
		session.FormatPercent(rec.SuccessRate()), rec.ConsistencyScore))
}

func (a *App) NoVoiceWarning() {
	a.setText(a.message, "🎤 No voice detected, check your microphone")
}

func (a *App) VoiceCleared() {
	a.gauge.mu.Lock()
	state := a.gauge.state
	a.gauge.mu.Unlock()
	msg, emoji := zone.Message(state, "")
	a.setText(a.message, emoji+" "+msg)
}
