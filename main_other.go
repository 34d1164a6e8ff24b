//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	initCrashLog()

	// The window and the global hotkey both want the main thread; the
	// window wins and run moves to a goroutine.
	if wantsGUI(os.Args[1:]) {
		initGUI()
		return
	}
	mainthread.Init(run)
}
