package action

import (
	"fmt"
	"runtime"
	"strings"
)

// recoverExecution converts a panic raised by an execution strategy into an
// *ExecutionError so the controller can roll back the transaction and surface
// a typed failure instead of crashing the calling goroutine.
func recoverExecution(name string, logger Logger, errOut *error) {
	r := recover()
	if r == nil {
		return
	}

	stack := make([]byte, 8096)
	n := runtime.Stack(stack, false)
	cleaned := cleanStackTrace(stack[:n])

	logger.Error("recovered from panic in action %s: %v\n%s", name, r, cleaned)

	if err, ok := r.(error); ok {
		*errOut = NewExecutionError(fmt.Sprintf("panic in action %s", name), err)
		return
	}
	*errOut = NewExecutionError(fmt.Sprintf("panic in action %s: %v", name, r), nil)
}

// cleanStackTrace drops the frames above the panic call so logs start at the
// offending handler.
func cleanStackTrace(stack []byte) []byte {
	lines := strings.Split(string(stack), "\n")

	panicLineIndex := -1
	for i, line := range lines {
		if strings.Contains(line, "panic(") {
			panicLineIndex = i
			break
		}
	}

	// remove the panic() call line and its file reference line
	if panicLineIndex >= 0 && panicLineIndex+2 < len(lines) {
		lines = lines[panicLineIndex+2:]
	}

	return []byte(strings.Join(lines, "\n"))
}
