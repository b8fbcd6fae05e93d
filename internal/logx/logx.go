// Package logx is the supervisor's logging wrapper: one tagged line per
// event through the standard log package, colorized by level when attached
// to a terminal. Log formatting and rotation beyond this are explicitly out
// of scope and left to a surrounding tool such as logrotate.
package logx

import (
	"fmt"
	"log"

	"github.com/fatih/color"
)

var (
	infoPrefix = color.New(color.FgCyan).SprintFunc()
	warnPrefix = color.New(color.FgYellow, color.Bold).SprintFunc()
	errPrefix  = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Info logs a routine event under tag (e.g. "child:web", "udp", "stats").
func Info(tag, format string, args ...interface{}) {
	log.Printf("%s %s", infoPrefix("[INFO]["+tag+"]"), fmt.Sprintf(format, args...))
}

// Warn logs a recoverable problem under tag.
func Warn(tag, format string, args ...interface{}) {
	log.Printf("%s %s", warnPrefix("[WARN]["+tag+"]"), fmt.Sprintf(format, args...))
}

// Error logs an unrecoverable-for-this-attempt problem under tag.
func Error(tag, format string, args ...interface{}) {
	log.Printf("%s %s", errPrefix("[ERROR]["+tag+"]"), fmt.Sprintf(format, args...))
}
