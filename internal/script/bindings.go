package script

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/undocalc/internal/engine/accumulator"
)

func (r *Runner) install() {
	funcs := map[string]lua.LGFunction{
		"compute":     r.luaCompute,
		"undo":        r.luaUndo,
		"redo":        r.luaRedo,
		"value":       r.luaValue,
		"cursor":      r.luaCursor,
		"begin_group": r.luaBeginGroup,
		"end_group":   r.luaEndGroup,
		"print":       r.luaPrint,
	}
	for name, fn := range funcs {
		r.L.SetGlobal(name, r.L.NewFunction(fn))
	}
}

// fail records err for the caller and raises it as a Lua error.
func (r *Runner) fail(L *lua.LState, err error) int {
	r.lastErr = err
	L.RaiseError("%s", err.Error())
	return 0
}

// compute(op, n) -> value
func (r *Runner) luaCompute(L *lua.LState) int {
	symbol := L.CheckString(1)
	operand := L.CheckInt64(2)

	op, err := accumulator.ParseOperator(symbol)
	if err != nil {
		return r.fail(L, err)
	}
	if err := r.calc.Compute(r.ctx, op, operand); err != nil {
		return r.fail(L, err)
	}
	L.Push(lua.LNumber(r.calc.Value()))
	return 1
}

// undo([levels]) -> steps
func (r *Runner) luaUndo(L *lua.LState) int {
	n, err := r.calc.Undo(r.ctx, L.OptInt(1, 1))
	if err != nil {
		return r.fail(L, err)
	}
	L.Push(lua.LNumber(n))
	return 1
}

// redo([levels]) -> steps
func (r *Runner) luaRedo(L *lua.LState) int {
	n, err := r.calc.Redo(r.ctx, L.OptInt(1, 1))
	if err != nil {
		return r.fail(L, err)
	}
	L.Push(lua.LNumber(n))
	return 1
}

func (r *Runner) luaValue(L *lua.LState) int {
	L.Push(lua.LNumber(r.calc.Value()))
	return 1
}

func (r *Runner) luaCursor(L *lua.LState) int {
	L.Push(lua.LNumber(r.calc.Cursor()))
	return 1
}

func (r *Runner) luaBeginGroup(L *lua.LState) int {
	r.calc.BeginGroup(L.OptString(1, "script"))
	r.groupOpen = true
	return 0
}

func (r *Runner) luaEndGroup(L *lua.LState) int {
	if err := r.calc.EndGroup(); err != nil {
		return r.fail(L, err)
	}
	r.groupOpen = false
	return 0
}

func (r *Runner) luaPrint(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}
