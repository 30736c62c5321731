package common

import (
	"fmt"
	"runtime"

	"github.com/ternarybob/arbor"
)

// SafeGo runs fn in a goroutine. A panic is logged and swallowed so a failing
// background task does not take the server down.
func SafeGo(logger arbor.ILogger, name string, fn func()) {
	go func() {
		defer Recover(logger, name)
		fn()
	}()
}

// Recover logs a recovered panic. Call it deferred.
func Recover(logger arbor.ILogger, name string) {
	r := recover()
	if r == nil {
		return
	}
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	logger.Error().
		Str("goroutine", name).
		Str("panic", fmt.Sprintf("%v", r)).
		Str("stack", string(buf[:n])).
		Msg("Recovered from panic")
}
