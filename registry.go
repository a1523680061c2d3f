package keel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"
)

// registration pairs a component with its lifecycle state
type registration struct {
	component Component
	state     ComponentState
}

// ComponentRegistry holds the application's components, resolves their boot
// order, and drives them through the lifecycle state machine.
//
// Registration order is preserved: it breaks ties in boot-order resolution
// and fixes the relative order of independent components, so a given set of
// registrations always boots the same way. Lifecycle methods (Boot,
// ReloadNotify, Shutdown) are serialized by the owning application; state
// queries are safe from any goroutine.
type ComponentRegistry struct {
	mu         sync.RWMutex
	components map[string]*registration
	order      []string // registration order
	bootOrder  []string // recorded at boot, drives reload and shutdown
	sealed     bool     // registration closed once boot begins
	booted     bool
	logger     Logger
}

// NewComponentRegistry creates an empty registry logging through the given
// logger.
func NewComponentRegistry(logger Logger) *ComponentRegistry {
	return &ComponentRegistry{
		components: make(map[string]*registration),
		logger:     logger,
	}
}

// Register adds a component to the registry. Components implementing
// ComponentProvider are expanded transitively, and the whole batch is
// validated before any of it is committed: a duplicate name, empty name, or
// nil component anywhere in the expansion registers nothing.
//
// Registration closes when boot begins; later calls return
// ErrRegisterAfterBoot.
func (r *ComponentRegistry) Register(component Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegisterAfterBoot
	}

	seen := make(map[string]bool)
	batch, err := collectComponents(component, seen)
	if err != nil {
		return err
	}

	for _, c := range batch {
		if _, exists := r.components[c.Name()]; exists {
			return fmt.Errorf("%w: %q", ErrComponentDuplicate, c.Name())
		}
	}

	for _, c := range batch {
		r.components[c.Name()] = &registration{component: c, state: StateRegistered}
		r.order = append(r.order, c.Name())
		r.logger.Debug("Registered component", "component", c.Name())
	}

	return nil
}

// collectComponents expands a component and its transitive subcomponents
// into a flat batch, validating names as it goes. The seen set doubles as
// the guard against provider graphs that feed a name back into themselves.
func collectComponents(c Component, seen map[string]bool) ([]Component, error) {
	if c == nil {
		return nil, ErrComponentNil
	}
	name := c.Name()
	if name == "" {
		return nil, ErrComponentNameEmpty
	}
	if seen[name] {
		return nil, fmt.Errorf("%w: %q", ErrComponentDuplicate, name)
	}
	seen[name] = true

	batch := []Component{c}
	if provider, ok := c.(ComponentProvider); ok {
		for _, sub := range provider.Subcomponents() {
			subBatch, err := collectComponents(sub, seen)
			if err != nil {
				return nil, err
			}
			batch = append(batch, subBatch...)
		}
	}
	return batch, nil
}

// ResolveBootOrder returns the order components will boot in: a topological
// sort of the dependency graph that follows registration order wherever the
// graph leaves a choice. The result is deterministic for a given
// registration sequence.
//
// A dependency on an unregistered name yields ErrComponentUnknownDependency;
// a dependency cycle yields ErrComponentCycle naming the cycle path.
func (r *ComponentRegistry) ResolveBootOrder() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveBootOrderLocked()
}

func (r *ComponentRegistry) resolveBootOrderLocked() ([]string, error) {
	indegree := make(map[string]int, len(r.order))
	dependents := make(map[string][]string, len(r.order))

	for _, name := range r.order {
		indegree[name] = 0
	}
	for _, name := range r.order {
		for _, dep := range componentDependencies(r.components[name].component) {
			if _, exists := r.components[dep]; !exists {
				return nil, fmt.Errorf("%w: %s requires %s", ErrComponentUnknownDependency, name, dep)
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	// Kahn's algorithm, always picking the registration-earliest component
	// among those whose dependencies are all scheduled.
	order := make([]string, 0, len(r.order))
	done := make(map[string]bool, len(r.order))
	for len(order) < len(r.order) {
		progressed := false
		for _, name := range r.order {
			if done[name] || indegree[name] != 0 {
				continue
			}
			done[name] = true
			order = append(order, name)
			for _, dependent := range dependents[name] {
				indegree[dependent]--
			}
			progressed = true
			break
		}
		if !progressed {
			return nil, fmt.Errorf("%w: %s", ErrComponentCycle, r.cyclePathLocked(done))
		}
	}

	return order, nil
}

// cyclePathLocked extracts one cycle from the residual graph left by a
// stalled topological sort. Every unscheduled node sits on or upstream of a
// cycle, so walking unscheduled dependencies from any of them must repeat a
// node.
func (r *ComponentRegistry) cyclePathLocked(done map[string]bool) string {
	var start string
	for _, name := range r.order {
		if !done[name] {
			start = name
			break
		}
	}
	if start == "" {
		return "unknown"
	}

	seen := make(map[string]int)
	var path []string
	current := start
	for {
		if idx, ok := seen[current]; ok {
			cycle := append(path[idx:], current)
			return strings.Join(cycle, " -> ")
		}
		seen[current] = len(path)
		path = append(path, current)

		next := ""
		for _, dep := range componentDependencies(r.components[current].component) {
			if !done[dep] {
				next = dep
				break
			}
		}
		if next == "" {
			return strings.Join(path, " -> ")
		}
		current = next
	}
}

// componentDependencies returns the component's declared dependencies, or
// nil for components that don't implement DependencyAware.
func componentDependencies(c Component) []string {
	if aware, ok := c.(DependencyAware); ok {
		return aware.Dependencies()
	}
	return nil
}

// checkDependenciesReady reports whether every declared dependency of the
// named component is Ready. On a first boot the check never trips, because
// dependencies are initialized earlier in the order and a failure halts the
// sequence before any dependent is reached. A retried boot can find a
// dependency left Failed or Stopped, and must not initialize components
// above it.
func (r *ComponentRegistry) checkDependenciesReady(name string) error {
	for _, dep := range componentDependencies(r.componentByName(name)) {
		if state := r.stateOf(dep); state != StateReady {
			return fmt.Errorf("%w: %s requires %s (%s)", ErrComponentDependencyNotReady, name, dep, state)
		}
	}
	return nil
}

// Boot resolves the boot order, records it, and initializes components in
// sequence: each moves Registered -> Initializing -> Ready, or to Failed if
// its Init returns an error. A component is initialized only once every one
// of its declared dependencies is Ready.
//
// Boot is fail-fast without rollback: the first failure stops the sequence,
// components later in the order stay Registered, and components already
// Ready keep running. The returned error names the failed component and
// wraps both ErrComponentInitFailed and the component's own error. A retried
// Boot skips Ready components, leaves Failed components Failed, and halts
// with ErrComponentDependencyNotReady at the first component whose
// dependency is not Ready.
func (r *ComponentRegistry) Boot(ctx context.Context, app Application) error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return ErrAlreadyBooted
	}
	r.sealed = true
	order, err := r.resolveBootOrderLocked()
	if err != nil {
		r.mu.Unlock()
		return NewFrameworkError(KindComponent, "resolve boot order", err)
	}
	r.bootOrder = order
	r.mu.Unlock()

	app.Logger().Debug("Resolved boot order", "order", order)

	for _, name := range order {
		if state := r.stateOf(name); state != StateRegistered {
			app.Logger().Debug("Component not awaiting boot, skipping", "component", name, "state", state)
			continue
		}

		if err := r.checkDependenciesReady(name); err != nil {
			app.Logger().Error("Component dependency is not ready", "component", name, "error", err)
			return NewFrameworkError(KindComponent,
				fmt.Sprintf("boot halted at component %q", name), err)
		}

		component := r.componentByName(name)
		r.setState(name, StateInitializing)
		app.Logger().Info("Initializing component", "component", name)
		notifyLifecycleEvent(ctx, app, EventTypeComponentInitializing, name, nil)

		if err := component.Init(app); err != nil {
			r.setState(name, StateFailed)
			app.Logger().Error("Component initialization failed", "component", name, "error", err)
			notifyLifecycleEvent(ctx, app, EventTypeComponentFailed, name, map[string]any{
				"phase": "init",
				"error": err.Error(),
			})
			return NewFrameworkError(KindComponent,
				fmt.Sprintf("boot halted at component %q", name),
				fmt.Errorf("%w: %w", ErrComponentInitFailed, err))
		}

		if observable, ok := component.(ObservableComponent); ok {
			if err := observable.RegisterObservers(app); err != nil {
				app.Logger().Error("Failed to register observers for component", "component", name, "error", err)
			}
		}

		r.setState(name, StateReady)
		notifyLifecycleEvent(ctx, app, EventTypeComponentInitialized, name, nil)
	}

	r.mu.Lock()
	r.booted = true
	r.mu.Unlock()

	return nil
}

// ReloadNotify invokes AfterConfigReload on every Ready component in boot
// order. A rejection is collected and reported but never stops propagation
// to the remaining components; rejecting components keep running and keep
// their state. Each notification is announced with a reloading event and
// closed with a reloaded event, or a failed event tagged with the reload
// phase when the component rejects. The aggregate error wraps
// ErrComponentReloadFailed once per rejection.
func (r *ComponentRegistry) ReloadNotify(ctx context.Context, app Application) error {
	var errs error
	for _, name := range r.BootOrder() {
		if r.stateOf(name) != StateReady {
			continue
		}

		reloadable, ok := r.componentByName(name).(ReloadAware)
		if !ok {
			app.Logger().Debug("Component does not implement ReloadAware, skipping", "component", name)
			continue
		}

		notifyLifecycleEvent(ctx, app, EventTypeComponentReloading, name, nil)

		if err := reloadable.AfterConfigReload(ctx, app); err != nil {
			app.Logger().Error("Component rejected new configuration", "component", name, "error", err)
			notifyLifecycleEvent(ctx, app, EventTypeComponentFailed, name, map[string]any{
				"phase": "reload",
				"error": err.Error(),
			})
			errs = multierr.Append(errs, fmt.Errorf("%w: %s: %w", ErrComponentReloadFailed, name, err))
			continue
		}

		app.Logger().Debug("Component accepted new configuration", "component", name)
		notifyLifecycleEvent(ctx, app, EventTypeComponentReloaded, name, nil)
	}
	return errs
}

// Shutdown tears components down in exact reverse boot order, best-effort:
// each Ready component moves through ShuttingDown to Stopped, or to Failed
// if its Shutdown hook errors. A failing hook never stops the sweep; all
// failures are collected and returned after every component has been
// visited.
func (r *ComponentRegistry) Shutdown(ctx context.Context, app Application) error {
	order := r.BootOrder()

	var errs error
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		if state := r.stateOf(name); state != StateReady {
			app.Logger().Debug("Component not running, skipping shutdown", "component", name, "state", state)
			continue
		}

		component := r.componentByName(name)
		r.setState(name, StateShuttingDown)
		app.Logger().Info("Shutting down component", "component", name)
		notifyLifecycleEvent(ctx, app, EventTypeComponentStopping, name, nil)

		shutdownable, ok := component.(ShutdownAware)
		if !ok {
			r.setState(name, StateStopped)
			notifyLifecycleEvent(ctx, app, EventTypeComponentStopped, name, nil)
			continue
		}

		if err := shutdownable.Shutdown(ctx); err != nil {
			r.setState(name, StateFailed)
			app.Logger().Error("Component shutdown failed", "component", name, "error", err)
			notifyLifecycleEvent(ctx, app, EventTypeComponentFailed, name, map[string]any{
				"phase": "shutdown",
				"error": err.Error(),
			})
			errs = multierr.Append(errs, fmt.Errorf("%w: %s: %w", ErrComponentShutdownFailed, name, err))
			continue
		}

		r.setState(name, StateStopped)
		notifyLifecycleEvent(ctx, app, EventTypeComponentStopped, name, nil)
	}

	return errs
}

// State returns the lifecycle state of the named component.
func (r *ComponentRegistry) State(name string) (ComponentState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, exists := r.components[name]
	if !exists {
		return 0, fmt.Errorf("%w: %q", ErrComponentNotFound, name)
	}
	return reg.state, nil
}

// States returns a snapshot of every component's state.
func (r *ComponentRegistry) States() map[string]ComponentState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[string]ComponentState, len(r.components))
	for name, reg := range r.components {
		states[name] = reg.state
	}
	return states
}

// Components returns the registered component names in registration order.
func (r *ComponentRegistry) Components() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// BootOrder returns the order recorded by Boot, or nil before boot.
func (r *ComponentRegistry) BootOrder() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.bootOrder))
	copy(out, r.bootOrder)
	return out
}

// Get returns the named component.
func (r *ComponentRegistry) Get(name string) (Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, exists := r.components[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrComponentNotFound, name)
	}
	return reg.component, nil
}

func (r *ComponentRegistry) stateOf(name string) ComponentState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reg, exists := r.components[name]; exists {
		return reg.state
	}
	return StateRegistered
}

func (r *ComponentRegistry) componentByName(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reg, exists := r.components[name]; exists {
		return reg.component
	}
	return nil
}

func (r *ComponentRegistry) setState(name string, next ComponentState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, exists := r.components[name]
	if !exists {
		return
	}
	if !reg.state.CanTransition(next) {
		r.logger.Warn("Refusing state change", "component", name, "from", reg.state, "to", next, "error", ErrInvalidStateTransition)
		return
	}
	reg.state = next
}
