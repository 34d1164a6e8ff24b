//go:build gui

package gui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"hush/meter"
	"hush/zone"
)

const (
	gaugeWidth  = 360
	gaugeHeight = 36
)

// GaugeWidget is a horizontal intensity bar with the optimal band marked.
type GaugeWidget struct {
	widget.BaseWidget
	mu           sync.Mutex
	level        float64
	state        zone.State
	lower, upper float64
}

func NewGaugeWidget(cfg zone.Config) *GaugeWidget {
	g := &GaugeWidget{lower: cfg.Lower, upper: cfg.Upper}
	g.ExtendBaseWidget(g)
	return g
}

func (g *GaugeWidget) SetLevel(v float64) {
	g.mu.Lock()
	g.level = v
	g.mu.Unlock()
	fyne.Do(g.Refresh)
}

func (g *GaugeWidget) SetState(s zone.State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
	fyne.Do(g.Refresh)
}

func (g *GaugeWidget) SetThresholds(lower, upper float64) {
	g.mu.Lock()
	g.lower, g.upper = lower, upper
	g.mu.Unlock()
	fyne.Do(g.Refresh)
}

func (g *GaugeWidget) MinSize() fyne.Size {
	return fyne.NewSize(gaugeWidth, gaugeHeight)
}

func (g *GaugeWidget) CreateRenderer() fyne.WidgetRenderer {
	return &gaugeRenderer{
		gauge: g,
		bg:    canvas.NewRectangle(color.RGBA{40, 40, 40, 255}),
		band:  canvas.NewRectangle(color.RGBA{64, 192, 87, 60}),
		fill:  canvas.NewRectangle(ZoneColor(zone.Silent)),
		lo:    canvas.NewRectangle(color.RGBA{220, 220, 220, 255}),
		hi:    canvas.NewRectangle(color.RGBA{220, 220, 220, 255}),
	}
}

type gaugeRenderer struct {
	gauge          *GaugeWidget
	size           fyne.Size
	bg, band, fill *canvas.Rectangle
	lo, hi         *canvas.Rectangle
}

func (r *gaugeRenderer) Layout(size fyne.Size) {
	r.size = size
	r.bg.Resize(size)
	r.Refresh()
}

func (r *gaugeRenderer) MinSize() fyne.Size { return r.gauge.MinSize() }

func (r *gaugeRenderer) Refresh() {
	r.gauge.mu.Lock()
	level, state := r.gauge.level, r.gauge.state
	lower, upper := r.gauge.lower, r.gauge.upper
	r.gauge.mu.Unlock()

	w, h := r.size.Width, r.size.Height
	x := func(v float64) float32 { return fraction(v) * w }

	r.band.Move(fyne.NewPos(x(lower), 0))
	r.band.Resize(fyne.NewSize(x(upper)-x(lower), h))

	r.fill.FillColor = ZoneColor(state)
	r.fill.Resize(fyne.NewSize(x(level), h))

	r.lo.Move(fyne.NewPos(x(lower), 0))
	r.lo.Resize(fyne.NewSize(2, h))
	r.hi.Move(fyne.NewPos(x(min(upper, meter.Max))-2, 0))
	r.hi.Resize(fyne.NewSize(2, h))

	for _, o := range r.Objects() {
		o.Refresh()
	}
}

func (r *gaugeRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.bg, r.band, r.fill, r.lo, r.hi}
}

func (r *gaugeRenderer) Destroy() {}
