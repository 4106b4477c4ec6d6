// Package env reads the environment switches shared by the library and the command.
package env

import (
	"os"
	"strconv"
	"time"
)

// Debug enables debug logging.
func Debug() bool {
	return os.Getenv("DEBUG") != ""
}

// MathJaxPath is the location of the MathJax bundle used by the typesetting engine.
func MathJaxPath() string {
	return os.Getenv("M2_MATHJAX")
}

// Timeout reads $M2_TIMEOUT in whole seconds. An unset or malformed value reports false.
func Timeout() (time.Duration, bool) {
	s := os.Getenv("M2_TIMEOUT")
	if s == "" {
		return 0, false
	}
	seconds, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}
