package lua

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a chunk or callback runs past
	// its deadline.
	ErrExecutionTimeout = errors.New("lua execution timeout")
)

// ScriptError is a compile or runtime error raised by a script.
type ScriptError struct {
	// Script is the chunk name, usually the file path.
	Script string
	// Line is the line the error was raised at, if known.
	Line int
	// Message describes the error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("lua %s:%d: %s", e.Script, e.Line, e.Message)
	}
	return fmt.Sprintf("lua %s: %s", e.Script, e.Message)
}

// Unwrap returns the underlying error.
func (e *ScriptError) Unwrap() error {
	return e.Err
}

// newScriptError extracts "name:line: message" from a gopher-lua error.
func newScriptError(name string, err error) *ScriptError {
	msg := err.Error()
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		msg = apiErr.Object.String()
	}
	se := &ScriptError{Script: name, Message: msg, Err: err}

	// Runtime errors read "name:3: msg", syntax errors "name line:3(column:5) ...".
	if rest, ok := strings.CutPrefix(msg, name+":"); ok {
		if num, text, ok := strings.Cut(rest, ":"); ok {
			if line, convErr := strconv.Atoi(strings.TrimSpace(num)); convErr == nil {
				se.Line = line
				se.Message = strings.TrimSpace(text)
			}
		}
	} else if rest, ok := strings.CutPrefix(msg, name+" line:"); ok {
		num, _, _ := strings.Cut(rest, "(")
		if line, convErr := strconv.Atoi(num); convErr == nil {
			se.Line = line
		}
	}
	return se
}
