package chat

import (
	"os"
	"time"
)

var debugEnabled = os.Getenv("RAVEL_DEBUG") != ""

// debugLog appends a line to the debug file when debugging is on. Failures
// are ignored; logging must never take the session down.
func debugLog(msg string) {
	if !debugEnabled {
		return
	}
	f, err := os.OpenFile("/tmp/ravel-debug.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(time.Now().Format("15:04:05.000") + " " + msg + "\n")
}
