package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"hush/audio"
	"hush/beep"
	"hush/engine"
	"hush/log"
	"hush/store"
	"hush/zone"
)

// runTestMode meters wavPath in real time through the fake capture and
// executes stdin commands against the engine:
//
//	START, END, SLEEP <ms>, WAIT_AUDIO_DONE, STATS, QUIT
func runTestMode(wavPath string, o *options, st store.Store, cfg zone.Config) int {
	beep.Disable()

	fake, err := audio.NewFakeContext(wavPath, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		return 1
	}
	src := audio.NewMeter(func() (audio.Context, error) { return fake, nil }, "")
	defer src.Close()

	eng := engine.New(engine.Options{
		Source:        src,
		Store:         st,
		Sink:          engine.MultiSink{cueSink{}, newPrintSink(os.Stdout)},
		Config:        cfg,
		Name:          o.name,
		FrameInterval: o.frame,
		AutoEnd:       o.autoEnd,
	})
	if err := eng.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fakeCapture := src.Capture().(*audio.FakeCapture)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	driveTest(os.Stdin, os.Stdout, eng, st, fakeCapture.AudioDone())

	cancel()
	<-eng.Done()
	return 0
}

func driveTest(in io.Reader, out io.Writer, eng *engine.Engine, st store.Store, audioDone <-chan struct{}) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch cmd {
		case "":
		case "START":
			eng.Call(func(e *engine.Engine) {
				if _, err := e.StartSession(); err != nil {
					fmt.Fprintf(out, "ERROR %v\n", err)
				}
			})
		case "END":
			eng.Call(func(e *engine.Engine) {
				if _, ok := e.EndSession(); !ok {
					fmt.Fprintln(out, "NO_SESSION")
				}
			})
		case "WAIT_AUDIO_DONE":
			<-audioDone
		case "STATS":
			stats, err := st.AggregateStats()
			if err != nil {
				fmt.Fprintf(out, "ERROR %v\n", err)
				continue
			}
			fmt.Fprintf(out, "STATS count=%d avg=%.1f green=%d total=%d\n",
				stats.Count, stats.AvgSuccessRate, stats.TotalGreenTime, stats.TotalTime)
		case "QUIT":
			return
		default:
			if ms, ok := strings.CutPrefix(cmd, "SLEEP "); ok {
				if n, err := strconv.Atoi(ms); err == nil {
					time.Sleep(time.Duration(n) * time.Millisecond)
				}
				continue
			}
			log.Warnf("test mode: unknown command %q", cmd)
		}
	}
}
