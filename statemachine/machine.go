package statemachine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/milk9111/fpslocomotion/logger"
)

var (
	ErrNilState       = errors.New("statemachine: state is nil")
	ErrDuplicateState = errors.New("statemachine: state already registered")
	ErrAlreadyStarted = errors.New("statemachine: machine already started")
	ErrNoStates       = errors.New("statemachine: no states registered")
	ErrUnknownState   = errors.New("statemachine: state not registered")
)

// Machine owns three disjoint state pools. Initial states are consumed into
// the active pool by Start; afterwards every state is either active or
// inactive. Activation and deactivation never fail loudly: a refused request
// returns false and changes nothing.
type Machine struct {
	initial  []State
	active   []State
	inactive []State
	started  bool

	log *slog.Logger
}

type Option func(*Machine)

// WithLogger routes activation logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

func New(opts ...Option) *Machine {
	m := &Machine{}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.For("statemachine")
	}
	return m
}

// RegisterInitial adds s to the pool that becomes active on Start.
func (m *Machine) RegisterInitial(s State) error {
	if err := m.checkRegister(s); err != nil {
		return err
	}
	m.initial = append(m.initial, s)
	return nil
}

// RegisterInactive adds s to the pool of states that start inactive.
func (m *Machine) RegisterInactive(s State) error {
	if err := m.checkRegister(s); err != nil {
		return err
	}
	m.inactive = append(m.inactive, s)
	return nil
}

func (m *Machine) checkRegister(s State) error {
	if s == nil {
		return ErrNilState
	}
	if m.started {
		return fmt.Errorf("register %s: %w", s.ID(), ErrAlreadyStarted)
	}
	for _, pool := range [][]State{m.initial, m.inactive} {
		for _, existing := range pool {
			if existing == s || existing.ID() == s.ID() {
				return fmt.Errorf("register %s: %w", s.ID(), ErrDuplicateState)
			}
		}
	}
	return nil
}

// Require fails when any of ids has not been registered. Callers use it at
// setup so guards never reference a missing state at runtime.
func (m *Machine) Require(ids ...StateID) error {
	for _, id := range ids {
		if m.find(m.initial, id) == nil && m.find(m.inactive, id) == nil && m.find(m.active, id) == nil {
			return fmt.Errorf("require %s: %w", id, ErrUnknownState)
		}
	}
	return nil
}

// Start initializes every registered state exactly once, then starts the
// initial states in registration order. Cross-state lookups made during
// OnInitialize are therefore valid before any OnStart runs.
func (m *Machine) Start() error {
	if m.started {
		return ErrAlreadyStarted
	}
	if len(m.initial) == 0 && len(m.inactive) == 0 {
		return ErrNoStates
	}
	m.started = true

	for _, s := range m.initial {
		s.OnInitialize(m)
	}
	for _, s := range m.inactive {
		s.OnInitialize(m)
	}

	m.active = append(m.active, m.initial...)
	m.initial = nil
	for _, s := range m.active {
		s.OnStart()
		m.log.Debug("state started", "state", s.ID())
	}
	return nil
}

// Activate moves id from inactive to active and starts it. It reports false
// when id is already active, not registered as inactive, or its guard refuses.
func (m *Machine) Activate(id StateID) bool {
	if !m.CanActivate(id) {
		return false
	}
	s := m.find(m.inactive, id)
	m.inactive = remove(m.inactive, s)
	m.active = append(m.active, s)
	s.OnStart()
	m.log.Debug("state activated", "state", id)
	return true
}

// Deactivate moves id from active to inactive and stops it.
func (m *Machine) Deactivate(id StateID, isTransition bool) bool {
	s := m.find(m.active, id)
	if s == nil {
		return false
	}
	if m.find(m.inactive, id) != nil {
		return false
	}
	m.active = remove(m.active, s)
	m.inactive = append(m.inactive, s)
	s.OnStop(isTransition)
	m.log.Debug("state deactivated", "state", id, "transition", isTransition)
	return true
}

// Transition deactivates from and then activates to. The two steps are not
// atomic: when from stops but to is refused, neither state is active until
// someone activates a state again.
func (m *Machine) Transition(from, to StateID) bool {
	return m.Deactivate(from, true) && m.Activate(to)
}

func (m *Machine) IsActive(id StateID) bool {
	return m.find(m.active, id) != nil
}

func (m *Machine) IsInactive(id StateID) bool {
	return m.find(m.inactive, id) != nil
}

// CanActivate reports whether Activate(id) would succeed, without side effects.
func (m *Machine) CanActivate(id StateID) bool {
	if !m.started || m.IsActive(id) {
		return false
	}
	s := m.find(m.inactive, id)
	if s == nil {
		return false
	}
	return s.CanActivate()
}

// IsActiveOrSubtype reports whether any active state has kind k or a kind below it.
func (m *Machine) IsActiveOrSubtype(k Kind) bool {
	for _, s := range m.active {
		if s.Kind().IsA(k) {
			return true
		}
	}
	return false
}

// Active returns the active ids in activation order.
func (m *Machine) Active() []StateID {
	ids := make([]StateID, 0, len(m.active))
	for _, s := range m.active {
		ids = append(ids, s.ID())
	}
	return ids
}

// Update runs OnUpdate then OnUpdateGuard for each state active at the start
// of the phase. A state stopped earlier in the same phase is skipped; a state
// started during the phase first ticks in the next one.
func (m *Machine) Update(dt float64) {
	m.tick(func(s State) { s.OnUpdate(dt) }, func(s State) { s.OnUpdateGuard(dt) })
}

func (m *Machine) FixedUpdate(dt float64) {
	m.tick(func(s State) { s.OnFixedUpdate(dt) }, func(s State) { s.OnFixedUpdateGuard(dt) })
}

func (m *Machine) LateUpdate(dt float64) {
	m.tick(func(s State) { s.OnLateUpdate(dt) }, func(s State) { s.OnLateUpdateGuard(dt) })
}

func (m *Machine) tick(hook, guard func(State)) {
	if !m.started || len(m.active) == 0 {
		return
	}
	snapshot := slices.Clone(m.active)
	for _, s := range snapshot {
		if !m.isActiveState(s) {
			continue
		}
		hook(s)
		if !m.isActiveState(s) {
			continue
		}
		guard(s)
	}
}

func (m *Machine) isActiveState(s State) bool {
	return slices.Contains(m.active, s)
}

func (m *Machine) find(pool []State, id StateID) State {
	for _, s := range pool {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

func remove(pool []State, s State) []State {
	i := slices.Index(pool, s)
	if i < 0 {
		return pool
	}
	return slices.Delete(pool, i, i+1)
}
