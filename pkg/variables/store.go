// Package variables holds the run-scoped key/value environment nodes read from and write to.
package variables

import (
	"maps"
	"slices"
	"sync"
)

// NodeKeyPrefix prefixes the key under which each node's output is stored.
const NodeKeyPrefix = "node_"

// Names that all read and write the last-output slot.
const (
	AliasLastOutput = "lastOutput"
	AliasResult     = "result"
	AliasResponse   = "response"
	AliasOutput     = "output"
)

var aliases = []string{AliasLastOutput, AliasResult, AliasResponse, AliasOutput}

// IsAlias reports whether name is one of the last-output aliases.
func IsAlias(name string) bool {
	return slices.Contains(aliases, name)
}

// NodeKey returns the store key for a node's output.
func NodeKey(nodeID string) string {
	return NodeKeyPrefix + nodeID
}

// Store is safe for concurrent use. The last-output aliases share a single slot that the most
// recently completed node overwrites.
type Store struct {
	mu      sync.RWMutex
	values  map[string]any
	last    any
	hasLast bool
}

// New returns a store seeded with a copy of seed.
func New(seed map[string]any) *Store {
	s := &Store{values: make(map[string]any, len(seed))}

	for name, value := range seed {
		s.Set(name, value)
	}

	return s
}

// Get looks up name, consulting the last-output slot for alias names.
func (s *Store) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if IsAlias(name) {
		return s.last, s.hasLast
	}

	value, ok := s.values[name]

	return value, ok
}

// Set stores value under name. Setting an alias writes the last-output slot.
func (s *Store) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if IsAlias(name) {
		s.last = value
		s.hasLast = true

		return
	}

	s.values[name] = value
}

// Delete removes name. Deleting an alias clears the last-output slot.
func (s *Store) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if IsAlias(name) {
		s.last = nil
		s.hasLast = false

		return
	}

	delete(s.values, name)
}

// RecordOutput stores a node's output under its node key and in the last-output slot.
func (s *Store) RecordOutput(nodeID string, output any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[NodeKey(nodeID)] = output
	s.last = output
	s.hasLast = true
}

// Last returns the value of the last-output slot.
func (s *Store) Last() (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.last, s.hasLast
}

// Snapshot returns a shallow copy of all variables, aliases included.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := maps.Clone(s.values)
	if out == nil {
		out = make(map[string]any)
	}

	if s.hasLast {
		for _, alias := range aliases {
			out[alias] = s.last
		}
	}

	return out
}

// Names returns the variable names in sorted order, aliases included when set.
func (s *Store) Names() []string {
	return slices.Sorted(maps.Keys(s.Snapshot()))
}
