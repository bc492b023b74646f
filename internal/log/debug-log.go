//go:build debug
// +build debug

package log

import (
	"fmt"
	stdlog "log"
	"os"
)

var logger = stdlog.New(os.Stderr, "", stdlog.Lshortfile|stdlog.Ltime)

func init() {
	backend = func(kind string, level Level, msg string) {
		logger.Output(3, fmt.Sprintf("[%s] %s: %s", level, kind, msg))
	}
}
