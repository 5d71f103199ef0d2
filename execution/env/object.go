package env

import (
	"maps"
	"sync"

	"github.com/robbyt/go-polyexpr/execution/value"
)

// Method is a host method exposed through Members.
type Method func(args []value.Value) (value.Value, error)

// Members is a ready-made Object for hosts that expose plain fields and methods.
// Names listed in Private are only reachable when private access is allowed.
type Members struct {
	mu      sync.RWMutex
	fields  map[string]value.Value
	methods map[string]Method
	private map[string]bool
}

// NewMembers creates a Members with the given fields and methods. The maps are copied.
func NewMembers(fields map[string]value.Value, methods map[string]Method, private ...string) *Members {
	m := &Members{
		fields:  maps.Clone(fields),
		methods: maps.Clone(methods),
		private: make(map[string]bool, len(private)),
	}
	if m.fields == nil {
		m.fields = make(map[string]value.Value)
	}
	for _, name := range private {
		m.private[name] = true
	}
	return m
}

func (m *Members) visible(name string, allowPrivate bool) bool {
	return allowPrivate || !m.private[name]
}

// GetMember implements Object.
func (m *Members) GetMember(name string, allowPrivate bool) (value.Value, bool, error) {
	if !m.visible(name, allowPrivate) {
		return value.Null, false, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.fields[name]
	return v, ok, nil
}

// CallMethod implements Object.
func (m *Members) CallMethod(name string, args []value.Value, allowPrivate bool) (value.Value, bool, error) {
	if !m.visible(name, allowPrivate) {
		return value.Null, false, nil
	}
	fn, ok := m.methods[name]
	if !ok {
		return value.Null, false, nil
	}
	v, err := fn(args)
	return v, true, err
}

// SetMember implements Settable. Only existing fields are assignable.
func (m *Members) SetMember(name string, v value.Value, allowPrivate bool) (bool, error) {
	if !m.visible(name, allowPrivate) {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fields[name]; !ok {
		return false, nil
	}
	m.fields[name] = v
	return true, nil
}
