package tools

import (
	"fmt"
	"log"
	"time"

	"github.com/golang/glog"
)

var isEnabled = true
var printTimestamp = true

func EnableLogger() {
	isEnabled = true
}

func DisableLogger() {
	isEnabled = false
}

func EnableLoggerTimestamp() {
	printTimestamp = true
}

func DisableLoggerTimestamp() {
	printTimestamp = false
}

// LogOutput prints a user facing progress line. Lines are always kept in the glog info log,
// even when the console logger is disabled.
func LogOutput(val ...interface{}) {
	glog.Info(fmt.Sprintln(val...))
	if !isEnabled {
		return
	}
	if printTimestamp {
		val = append([]interface{}{"[" + time.Now().Format("2006-01-02 15.04:05.000") + "]"}, val...)
	}
	log.Println(val...)
}
