package statemachine

import "strings"

// StateID names a concrete state. A machine holds at most one state per id.
type StateID string

// Kind places a state in a slash-separated taxonomy, e.g. "movement/grounded/run".
// IsActiveOrSubtype queries walk this path instead of a type hierarchy.
type Kind string

// Sub returns the child kind name below k.
func (k Kind) Sub(name string) Kind {
	if k == "" {
		return Kind(name)
	}
	return k + "/" + Kind(name)
}

// IsA reports whether k equals parent or sits below it.
func (k Kind) IsA(parent Kind) bool {
	if parent == "" {
		return true
	}
	return k == parent || strings.HasPrefix(string(k), string(parent)+"/")
}

// State is one lifecycle unit owned by a Machine. Hooks are only invoked by
// the owning machine: OnInitialize once, OnStart on every activation, OnStop
// on every deactivation, and the tick hooks while the state is active, in the
// order update, fixed update, late update, each followed by its guard hook.
// CanActivate must not have side effects.
type State interface {
	ID() StateID
	Kind() Kind

	OnInitialize(m *Machine)
	OnStart()
	OnStop(isTransition bool)

	OnUpdate(dt float64)
	OnUpdateGuard(dt float64)
	OnFixedUpdate(dt float64)
	OnFixedUpdateGuard(dt float64)
	OnLateUpdate(dt float64)
	OnLateUpdateGuard(dt float64)

	CanActivate() bool
}

// Base provides no-op hooks and keeps the owning machine. Embed it and
// override what the state needs.
type Base struct {
	machine *Machine
}

func (b *Base) OnInitialize(m *Machine) { b.machine = m }

// Machine returns the owning machine, nil before initialization.
func (b *Base) Machine() *Machine { return b.machine }

func (b *Base) OnStart()                      {}
func (b *Base) OnStop(isTransition bool)      {}
func (b *Base) OnUpdate(dt float64)           {}
func (b *Base) OnUpdateGuard(dt float64)      {}
func (b *Base) OnFixedUpdate(dt float64)      {}
func (b *Base) OnFixedUpdateGuard(dt float64) {}
func (b *Base) OnLateUpdate(dt float64)       {}
func (b *Base) OnLateUpdateGuard(dt float64)  {}
func (b *Base) CanActivate() bool             { return true }
