//go:build !gui

package main

import (
	"hush/audio"
	"hush/engine"
	"hush/zone"
)

var guiMeter *audio.Meter

func initGUI() {
	panic("hush: built without GUI support (rebuild with -tags gui)")
}

func guiSink() engine.Sink         { return nil }
func guiSetThresholds(zone.Config) {}
func guiQuit()                     {}
