package registry

import "sync"

// Symbols interns names into dense, stable integer ids. Ids are assigned in
// first-seen order and never reused; the table only grows. It is safe for
// concurrent use so independent pipelines can be built in parallel.
type Symbols struct {
	mu    sync.RWMutex
	ids   map[string]int
	names []string
}

// NewSymbols creates an empty table.
func NewSymbols() *Symbols {
	return &Symbols{ids: make(map[string]int)}
}

// Intern returns the id of name, assigning the next free id on first use.
func (s *Symbols) Intern(name string) int {
	s.mu.RLock()
	id, ok := s.ids[name]
	s.mu.RUnlock()
	if ok {
		return id
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.ids[name]; ok {
		return id
	}
	id = len(s.names)
	s.ids[name] = id
	s.names = append(s.names, name)
	return id
}

// Lookup returns the id of name without interning it.
func (s *Symbols) Lookup(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.ids[name]
	return id, ok
}

// Name returns the name interned as id.
func (s *Symbols) Name(id int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[id]
}

// Len returns the number of interned names.
func (s *Symbols) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}
