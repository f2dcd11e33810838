// Package script runs Lua hotkey actions.
//
// Scripts execute in a sandboxed interpreter with a keytap table
// exposing the engine: keytap.send(spec), keytap.write(text) and
// keytap.pressed(spec). The Lua state is not goroutine-safe, so every
// run is serialized through the runner's mutex.
package script

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// Actions is the engine surface scripts may call.
type Actions interface {
	Send(spec string) error
	Write(text string) error
	IsPressed(spec string) (bool, error)
}

// Runner owns one sandboxed Lua state.
type Runner struct {
	mu      sync.Mutex
	state   *lua.LState
	actions Actions
	log     zerolog.Logger
}

// NewRunner builds a sandboxed interpreter bound to actions.
func NewRunner(actions Actions, log zerolog.Logger) *Runner {
	r := &Runner{
		state:   lua.NewState(),
		actions: actions,
		log:     log,
	}
	r.sandbox()
	r.installAPI()
	return r
}

// sandbox removes the escape hatches: code loading, the filesystem
// and process control.
func (r *Runner) sandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "io"} {
		r.state.SetGlobal(name, lua.LNil)
	}
	if osTable, ok := r.state.GetGlobal("os").(*lua.LTable); ok {
		for _, name := range []string{"execute", "exit", "remove", "rename", "getenv", "setenv", "tmpname"} {
			osTable.RawSetString(name, lua.LNil)
		}
	}
}

func (r *Runner) installAPI() {
	tbl := r.state.NewTable()
	r.state.SetField(tbl, "send", r.state.NewFunction(r.luaSend))
	r.state.SetField(tbl, "write", r.state.NewFunction(r.luaWrite))
	r.state.SetField(tbl, "pressed", r.state.NewFunction(r.luaPressed))
	r.state.SetGlobal("keytap", tbl)
}

func (r *Runner) luaSend(L *lua.LState) int {
	spec := L.CheckString(1)
	if err := r.actions.Send(spec); err != nil {
		L.RaiseError("send %q: %s", spec, err)
	}
	return 0
}

func (r *Runner) luaWrite(L *lua.LState) int {
	text := L.CheckString(1)
	if err := r.actions.Write(text); err != nil {
		L.RaiseError("write: %s", err)
	}
	return 0
}

func (r *Runner) luaPressed(L *lua.LState) int {
	spec := L.CheckString(1)
	down, err := r.actions.IsPressed(spec)
	if err != nil {
		L.RaiseError("pressed %q: %s", spec, err)
	}
	L.Push(lua.LBool(down))
	return 1
}

// RunFile executes a script file.
func (r *Runner) RunFile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.state.DoFile(path); err != nil {
		return fmt.Errorf("script: %s: %w", path, err)
	}
	return nil
}

// RunString executes inline script source.
func (r *Runner) RunString(src string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.state.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// Close shuts the interpreter down.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Close()
}
