// Package session tracks per-visitor state across requests.
package session

// Session is one visitor's bag of attributes, identified by the value of
// the visitor's session cookie. A session is not safe for concurrent use;
// load a copy per request and save it back.
type Session struct {
	ID string

	attributes map[string]any
}

func New(id string) *Session {
	return &Session{
		ID:         id,
		attributes: make(map[string]any),
	}
}

// Get returns the attribute stored under name, or fallback when absent.
func (s *Session) Get(name string, fallback any) any {
	value, found := s.attributes[name]
	if !found {
		return fallback
	}
	return value
}

func (s *Session) Set(name string, value any) {
	s.attributes[name] = value
}

func (s *Session) Has(name string) bool {
	_, found := s.attributes[name]
	return found
}

func (s *Session) Remove(name string) {
	delete(s.attributes, name)
}

func (s *Session) All() map[string]any {
	return s.attributes
}

func (s *Session) Clear() {
	s.attributes = make(map[string]any)
}
