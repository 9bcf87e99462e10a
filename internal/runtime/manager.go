package runtime

import (
	"context"
	"fmt"
	"sync"
)

// Manager registers components, resolves their start order from
// Requires(), and starts/stops them as a unit. Adapted from the
// teacher's internal/core.Manager: the registration map, duplicate-name
// guard, and Kahn's-algorithm topological sort are ported directly;
// priority-based tie-breaking and the type/soft-dependency ("Uses")
// machinery are dropped since every component here is a singleton by
// name, not one of several interchangeable implementations of a type.
type Manager struct {
	mu         sync.Mutex
	components map[string]Component
	startOrder []string
	started    bool
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{components: make(map[string]Component)}
}

// Register adds a component. Returns an error on a duplicate name.
func (m *Manager) Register(c Component) error {
	if c == nil {
		return fmt.Errorf("runtime: cannot register nil component")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name := c.Name()
	if name == "" {
		return fmt.Errorf("runtime: component name cannot be empty")
	}
	if _, exists := m.components[name]; exists {
		return fmt.Errorf("runtime: component %q already registered", name)
	}
	m.components[name] = c
	return nil
}

// resolveStartOrder topologically sorts the registered components by
// Requires(), matching the teacher's ResolveLoadOrder.
func (m *Manager) resolveStartOrder() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range m.components {
		if _, ok := graph[name]; !ok {
			graph[name] = nil
		}
		if _, ok := inDegree[name]; !ok {
			inDegree[name] = 0
		}
	}

	for name, c := range m.components {
		for _, dep := range c.Requires() {
			if _, ok := m.components[dep]; !ok {
				return nil, fmt.Errorf("runtime: component %q requires %q, which is not registered", name, dep)
			}
			graph[dep] = append(graph[dep], name)
			inDegree[name]++
		}
	}

	var queue, order []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, dependent := range graph[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(m.components) {
		return nil, fmt.Errorf("runtime: circular dependency among components")
	}

	return order, nil
}

// StartAll starts every registered component in dependency order.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	order, err := m.resolveStartOrder()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	for _, name := range order {
		m.mu.Lock()
		c := m.components[name]
		m.mu.Unlock()

		if err := c.Start(ctx); err != nil {
			return &ComponentError{Component: name, Operation: "start", Err: err}
		}
	}

	m.mu.Lock()
	m.startOrder = order
	m.started = true
	m.mu.Unlock()
	return nil
}

// StopAll stops every started component in reverse start order,
// continuing past individual failures and returning the first error
// encountered (if any) after every component has had a chance to stop.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil
	}
	order := append([]string(nil), m.startOrder...)
	m.mu.Unlock()

	var firstErr error
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		m.mu.Lock()
		c, ok := m.components[name]
		m.mu.Unlock()
		if !ok {
			continue
		}
		if err := c.Stop(ctx); err != nil && firstErr == nil {
			firstErr = &ComponentError{Component: name, Operation: "stop", Err: err}
		}
	}

	m.mu.Lock()
	m.started = false
	m.mu.Unlock()
	return firstErr
}

// Started reports whether StartAll has completed successfully.
func (m *Manager) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}
