package lua

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Default limits for Lua state.
const (
	DefaultExecutionTimeout = time.Second
	DefaultRegistryLimit    = 1 << 20
)

// State wraps gopher-lua with a sandbox and an execution deadline.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes Go
// callers; scripts themselves are single-threaded.
type State struct {
	L *lua.LState

	mu sync.Mutex

	executionTimeout time.Duration
	registryLimit    int

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout bounds one chunk or callback. Zero disables the
// deadline.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		if d >= 0 {
			s.executionTimeout = d
		}
	}
}

// WithRegistryLimit caps the Lua registry (value stack) size, in slots.
func WithRegistryLimit(slots int) StateOption {
	return func(s *State) {
		if slots > 0 {
			s.registryLimit = slots
		}
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		executionTimeout: DefaultExecutionTimeout,
		registryLimit:    DefaultRegistryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	initial := lua.RegistrySize
	if initial > s.registryLimit {
		initial = s.registryLimit
	}
	s.L = lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		RegistrySize:    initial,
		RegistryMaxSize: s.registryLimit,
	})
	openSafeLibraries(s.L)
	installSandbox(s.L)
	return s
}

// openSafeLibraries opens only the side-effect free standard libraries.
// io, os, debug and package are not available to scripts.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// DoFile executes a Lua file.
func (s *State) DoFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Do(path, f)
}

// DoString executes a chunk of Lua code named name.
func (s *State) DoString(name, code string) error {
	return s.Do(name, strings.NewReader(code))
}

// Do compiles and runs a chunk read from r.
func (s *State) Do(name string, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	fn, err := s.L.Load(r, name)
	if err != nil {
		return newScriptError(name, err)
	}
	return s.pcall(name, fn)
}

// Invoke calls fn with the arguments args builds and discards its
// results. args runs on the locked state and may be nil.
func (s *State) Invoke(name string, fn *lua.LFunction, args func(L *lua.LState) []lua.LValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	var values []lua.LValue
	if args != nil {
		values = args(s.L)
	}
	return s.pcall(name, fn, values...)
}

// pcall runs fn under the execution deadline. The caller holds mu.
func (s *State) pcall(name string, fn *lua.LFunction, args ...lua.LValue) (err error) {
	if s.executionTimeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.executionTimeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
		defer func() {
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = &ScriptError{Script: name, Message: "timed out", Err: ErrExecutionTimeout}
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = &ScriptError{Script: name, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()

	top := s.L.GetTop()
	s.L.Push(fn)
	for _, a := range args {
		s.L.Push(a)
	}
	if err := s.L.PCall(len(args), lua.MultRet, nil); err != nil {
		s.L.SetTop(top)
		return newScriptError(name, err)
	}
	s.L.SetTop(top)
	return nil
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// RegisterFunc registers a Go function as a global Lua function.
func (s *State) RegisterFunc(name string, fn lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.L.NewFunction(fn))
}

// RegisterModule installs funcs as the global table name and makes it
// loadable with require.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
	allowModule(s.L, name, mod)
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. Later calls return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
