package mailverify

import (
	"bytes"
	"encoding/json"
	"sync"
)

// ResultSet maps addresses to their results. Keys keep the order in which
// they were first set; setting an existing key replaces its value in place
// (last write wins). Safe for concurrent use.
type ResultSet struct {
	mu      sync.RWMutex
	order   []string
	results map[string]Result
}

// NewResultSet creates an empty ResultSet.
func NewResultSet() *ResultSet {
	return &ResultSet{results: make(map[string]Result)}
}

// Set records r for address.
func (s *ResultSet) Set(address string, r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[address]; !ok {
		s.order = append(s.order, address)
	}
	s.results[address] = r
}

// Get returns the result for address and whether it exists.
func (s *ResultSet) Get(address string) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[address]
	return r, ok
}

// Len returns the number of distinct addresses.
func (s *ResultSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Addresses returns the keys in insertion order.
func (s *ResultSet) Addresses() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Each calls fn for every entry in insertion order. fn must not modify s.
func (s *ResultSet) Each(fn func(address string, r Result)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.order {
		fn(a, s.results[a])
	}
}

// MarshalJSON encodes the set as an object keyed by address, preserving
// insertion order.
func (s *ResultSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	s.Each(func(address string, r Result) {
		if err != nil {
			return
		}
		var k, v []byte
		if k, err = json.Marshal(address); err != nil {
			return
		}
		if v, err = json.Marshal(r); err != nil {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
