package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine global into L:
//
//	engine.log.debug|info|warn|error(msg)   structured log via the Manager's logger
//	engine.random(n)                       integer in [0, n) from the Manager's source
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, scope string) {
	engine := L.NewTable()

	logger := m.logger.With(zap.String("scope", scope))
	logTbl := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
	}
	for name, fn := range levels {
		L.SetField(logTbl, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	L.SetField(engine, "log", logTbl)

	L.SetField(engine, "random", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.ArgError(1, "n must be > 0")
			return 0
		}
		L.Push(lua.LNumber(m.src.Intn(n)))
		return 1
	}))

	L.SetGlobal("engine", engine)
}
