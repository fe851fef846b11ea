package eval

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tracepad/internal/trace"
)

// LuaEvaluator evaluates expressions in a throwaway Lua state seeded with
// the frame's locals. Assignments made by statements are written back into
// the frame through SetLocal.
//
// Each Eval call owns its own LState: gopher-lua states are not
// goroutine-safe, and a fresh state keeps one suspension's scratch
// globals from leaking into the next.
type LuaEvaluator struct{}

// NewLua creates the default evaluator.
func NewLua() *LuaEvaluator { return &LuaEvaluator{} }

// Eval evaluates expr against the frame. Inputs are tried as an
// expression first ("return <expr>"), then as a statement.
func (e *LuaEvaluator) Eval(expr string, frame trace.Frame) (any, error) {
	L := lua.NewState()
	defer L.Close()

	locals := frame.Locals()
	for name, v := range locals {
		L.SetGlobal(name, toLua(L, v))
	}

	if err := L.DoString("return " + expr); err == nil {
		ret := L.Get(-1)
		L.Pop(1)
		writeBack(L, frame, locals)
		return toGo(ret), nil
	}

	if err := L.DoString(expr); err != nil {
		return nil, &Error{
			Expr:      expr,
			Err:       err,
			Traceback: luaTraceback(err),
		}
	}
	writeBack(L, frame, locals)
	return nil, nil
}

// writeBack copies mutated locals from the Lua state into the frame.
// Only names the frame already had are written; scratch globals stay in
// the throwaway state.
func writeBack(L *lua.LState, frame trace.Frame, locals map[string]any) {
	for name := range locals {
		lv := L.GetGlobal(name)
		if lv == lua.LNil {
			continue
		}
		v := toGo(lv)
		if !equalValue(locals[name], v) {
			_ = frame.SetLocal(name, v)
		}
	}
}

// equalValue compares the simple value kinds the bridge produces.
func equalValue(a, b any) bool {
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}

// luaTraceback splits a gopher-lua error message into traceback lines.
func luaTraceback(err error) []string {
	var lines []string
	for _, l := range strings.Split(err.Error(), "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// toLua bridges a Go value into the Lua state.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int8:
		return lua.LNumber(val)
	case int16:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint8:
		return lua.LNumber(val)
	case uint16:
		return lua.LNumber(val)
	case uint32:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		t := L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, toLua(L, item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, toLua(L, item))
		}
		return t
	default:
		return lua.LString(fmt.Sprintf("%v", val))
	}
}

// toGo bridges a Lua value back into Go.
func toGo(lv lua.LValue) any {
	switch val := lv.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int64(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LTable:
		return tableToGo(val)
	default:
		return val.String()
	}
}

// tableToGo converts a table to a slice when it is a pure array, a map
// otherwise.
func tableToGo(t *lua.LTable) any {
	n := t.Len()
	isArray := n > 0
	count := 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if _, ok := k.(lua.LNumber); !ok {
			isArray = false
		}
	})

	if isArray && count == n {
		out := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			out = append(out, toGo(t.RawGetInt(i)))
		}
		return out
	}

	out := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		out[k.String()] = toGo(v)
	})
	return out
}
