//go:build !linux

package audio

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	result := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID.Pointer()[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

func (m *malgoContext) OpenCapture(device *DeviceInfo, sink SampleSink) (Capture, error) {
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = Channels
	cfg.SampleRate = SampleRate
	cfg.PeriodSizeInFrames = WindowSize

	c := &malgoCapture{sink: sink, name: "system default"}
	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		cfg.Capture.DeviceID = devID.Pointer()
		c.name = device.Name
	}

	dev, err := malgo.InitDevice(m.ctx.Context, cfg, malgo.DeviceCallbacks{Data: c.onData})
	if err != nil {
		return nil, err
	}
	c.device = dev
	return c, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

// malgoCapture decodes each S16 period into a reused buffer on the audio
// thread and hands it to the sink. live gates delivery so a period that
// lands during Stop is dropped.
type malgoCapture struct {
	device *malgo.Device
	sink   SampleSink
	name   string
	live   atomic.Bool
	buf    []int16
}

func (c *malgoCapture) onData(_, input []byte, frames uint32) {
	if !c.live.Load() {
		return
	}
	n := min(int(frames), len(input)/2)
	if cap(c.buf) < n {
		c.buf = make([]int16, n)
	}
	buf := c.buf[:n]
	for i := range buf {
		buf[i] = int16(binary.LittleEndian.Uint16(input[i*2:]))
	}
	c.sink.WriteSamples(buf)
}

func (c *malgoCapture) Start() error {
	c.live.Store(true)
	if err := c.device.Start(); err != nil {
		c.live.Store(false)
		return err
	}
	return nil
}

func (c *malgoCapture) Stop() {
	c.live.Store(false)
	c.device.Stop()
}

func (c *malgoCapture) Close() { c.device.Uninit() }

func (c *malgoCapture) DeviceName() string { return c.name }
