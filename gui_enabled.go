//go:build gui

package main

import (
	"fmt"
	"os"
	"runtime"

	"hush/audio"
	"hush/engine"
	"hush/gui"
	"hush/zone"
)

var guiApp *gui.App

// guiMeter is opened on the main thread before fyne starts; Core Audio
// wants capture set up there.
var guiMeter *audio.Meter

func initGUI() {
	guiMode = true

	m := audio.NewMeter(audio.NewContext, flagValue(os.Args[1:], "device"))
	if err := m.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	guiMeter = m
	fmt.Fprintf(os.Stderr, "[audio] capture ready on %s\n", m.DeviceName())

	// Lock this goroutine to OS thread for Fyne/GLFW
	runtime.LockOSThread()

	guiApp = gui.NewApp(zone.Default(), run, requestToggle)
	if err := gui.Run(guiApp); err != nil {
		m.Close()
		panic(err)
	}
}

func guiSink() engine.Sink {
	if guiApp == nil {
		return nil
	}
	return guiApp
}

func guiSetThresholds(cfg zone.Config) {
	if guiApp != nil {
		guiApp.SetThresholds(cfg)
	}
}

func guiQuit() {
	if guiApp != nil {
		guiApp.Quit()
	}
}
