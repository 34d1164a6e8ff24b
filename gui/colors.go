package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"hush/meter"
	"hush/zone"
)

var zoneColors = map[zone.State]color.RGBA{
	zone.Silent:  {108, 117, 125, 255},
	zone.Low:     {77, 171, 247, 255},
	zone.Optimal: {64, 192, 87, 255},
	zone.Warning: {250, 176, 5, 255},
	zone.Danger:  {250, 82, 82, 255},
}

// ZoneColor returns the fill colour for s.
func ZoneColor(s zone.State) color.RGBA {
	if c, ok := zoneColors[s]; ok {
		return c
	}
	return zoneColors[zone.Silent]
}

// fraction maps an intensity onto [0,1] of the gauge.
func fraction(v float64) float32 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= meter.Max {
		return 1
	}
	return float32(v / meter.Max)
}

// iconPNG renders a size x size tray icon: a disc in the optimal colour
// with a darker ring.
func iconPNG(size int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	center := float64(size) / 2
	core := ZoneColor(zone.Optimal)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - center + 0.5
			dy := float64(y) - center + 0.5
			dist := math.Sqrt(dx*dx + dy*dy)
			switch {
			case dist < center*0.45:
				img.Set(x, y, core)
			case dist < center*0.8:
				t := (dist - center*0.45) / (center * 0.35)
				img.Set(x, y, color.RGBA{core.R / 2, uint8(float64(core.G) * (1 - t/2)), core.B / 2, 255})
			case dist < center*0.9:
				img.Set(x, y, color.RGBA{20, 40, 20, 255})
			}
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}
