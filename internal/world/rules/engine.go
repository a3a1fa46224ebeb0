// Package rules executes location triggers as Lua handler scripts.
//
// Each trigger action maps to a registered script. Scripts run in a fresh Lua
// state per invocation with three globals: data (the trigger's own payload),
// ctx (the augmented trigger context), and guild_id. A small world API lets
// scripts read and patch the state variables of the instance the trigger
// fired at.
package rules

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/Shopify/go-lua"

	"github.com/emberhollow/worldcore/internal/world/location"
	"github.com/emberhollow/worldcore/internal/world/state"
	"github.com/emberhollow/worldcore/internal/world/transit"
)

// Engine runs trigger lists through registered Lua handlers.
type Engine struct {
	worlds   *state.Manager
	handlers map[string]string
}

// NewEngine creates an engine over the given world manager.
func NewEngine(worlds *state.Manager) *Engine {
	return &Engine{worlds: worlds, handlers: map[string]string{}}
}

// RegisterHandler binds a trigger action to a Lua script. Registering the
// same action twice replaces the script.
func (e *Engine) RegisterHandler(action, source string) {
	if action == "" {
		return
	}
	e.handlers[action] = source
}

// ExecuteTriggers runs an ordered trigger list. Triggers with no registered
// handler are skipped. A failing handler does not stop later triggers; all
// handler errors are joined into the return value.
func (e *Engine) ExecuteTriggers(ctx context.Context, guildID string, triggers []location.Trigger, tctx map[string]any) error {
	var errs []error
	for _, trigger := range triggers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		source, ok := e.handlers[trigger.Action]
		if !ok {
			log.Printf("rules: no handler for trigger action %q in guild %s", trigger.Action, guildID)
			continue
		}
		if err := e.runHandler(guildID, source, trigger, tctx); err != nil {
			errs = append(errs, fmt.Errorf("trigger %s: %w", trigger.Action, err))
		}
	}
	return errors.Join(errs...)
}

// runHandler executes one script in an isolated Lua state.
func (e *Engine) runHandler(guildID, source string, trigger location.Trigger, tctx map[string]any) error {
	l := lua.NewState()
	lua.OpenLibraries(l)

	pushTable(l, trigger.Data)
	l.SetGlobal("data")
	pushTable(l, tctx)
	l.SetGlobal("ctx")
	l.PushString(guildID)
	l.SetGlobal("guild_id")

	e.registerWorldAPI(l, guildID, tctx)
	return lua.DoString(l, source)
}

// registerWorldAPI exposes guild-scoped state access to scripts. The target
// instance is the one the trigger fired at.
func (e *Engine) registerWorldAPI(l *lua.State, guildID string, tctx map[string]any) {
	instanceID, _ := tctx[transit.ContextKeyInstanceID].(string)

	l.Register("set_state", func(l *lua.State) int {
		key := lua.CheckString(l, 1)
		value := luaToGo(l, 2)
		if e.worlds != nil && instanceID != "" {
			e.worlds.UpdateState(guildID, instanceID, map[string]any{key: value})
		}
		return 0
	})

	l.Register("get_state", func(l *lua.State) int {
		key := lua.CheckString(l, 1)
		if e.worlds == nil || instanceID == "" {
			l.PushNil()
			return 1
		}
		instance, ok := e.worlds.Instance(guildID, instanceID)
		if !ok {
			l.PushNil()
			return 1
		}
		pushValue(l, instance.StateVariables[key])
		return 1
	})

	l.Register("log_message", func(l *lua.State) int {
		message := lua.CheckString(l, 1)
		log.Printf("rules: guild %s instance %s: %s", guildID, instanceID, message)
		return 0
	})
}

func pushValue(l *lua.State, value any) {
	switch v := value.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(v)
	case string:
		l.PushString(v)
	case int:
		l.PushNumber(float64(v))
	case int64:
		l.PushNumber(float64(v))
	case float64:
		l.PushNumber(v)
	case map[string]any:
		pushTable(l, v)
	case []any:
		l.NewTable()
		for i, item := range v {
			pushValue(l, item)
			l.RawSetInt(-2, i+1)
		}
	default:
		l.PushString(fmt.Sprint(v))
	}
}

func pushTable(l *lua.State, values map[string]any) {
	l.NewTable()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		pushValue(l, values[key])
		l.SetField(-2, key)
	}
}

func luaToGo(l *lua.State, index int) any {
	switch l.TypeOf(index) {
	case lua.TypeString:
		value, _ := l.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := l.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return l.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(l, index)
	default:
		return nil
	}
}

func tableToGo(l *lua.State, index int) any {
	index = l.AbsIndex(index)

	isArray := true
	maxIndex := 0
	count := 0
	l.PushNil()
	for l.Next(index) {
		if isArray {
			if l.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := l.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		l.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			l.RawGetInt(index, i)
			result = append(result, luaToGo(l, -1))
			l.Pop(1)
		}
		return result
	}

	output := map[string]any{}
	l.PushNil()
	for l.Next(index) {
		if l.TypeOf(-2) == lua.TypeString {
			key, _ := l.ToString(-2)
			output[key] = luaToGo(l, -1)
		}
		l.Pop(1)
	}
	return output
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
