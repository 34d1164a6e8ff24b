// Package audio captures microphone input and reduces it to a loudness
// level for the meter.
package audio

import "strings"

// Capture format: 16-bit mono PCM.
const (
	SampleRate = 16000
	Channels   = 1
)

// SampleSink receives captured samples on the capture thread. The slice
// is only valid for the duration of the call.
type SampleSink interface {
	WriteSamples(samples []int16)
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

// Bluetooth reports whether the device looks like a Bluetooth headset,
// whose narrowband microphone profile flattens the level reading.
func (d DeviceInfo) Bluetooth() bool { return IsBluetooth(d.Name) }

// Context enumerates capture devices and opens captures that deliver to
// a sink.
type Context interface {
	Devices() ([]DeviceInfo, error)
	OpenCapture(device *DeviceInfo, sink SampleSink) (Capture, error)
	Close()
}

// Capture is an open input stream. Samples reach the sink only between
// Start and Stop.
type Capture interface {
	Start() error
	Stop()
	Close()
	DeviceName() string
}

var (
	// headset brands and product lines sold mostly as Bluetooth
	btBrands = []string{
		"airpods", "beats", "bose", "jabra", "plantronics", "powerbeats",
		"skullcandy", "tozo", "galaxy buds", "pixel buds", "anker soundcore",
		"sennheiser momentum", "jbl ",
	}
	btModels = []string{"wh-1000", "wf-1000"}
	// tokens some drivers append to the device name
	btMarkers = []string{"bluetooth", " bt ", " bt)", " bt]", "hands-free"}
)

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, group := range [][]string{btBrands, btModels, btMarkers} {
		for _, kw := range group {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
