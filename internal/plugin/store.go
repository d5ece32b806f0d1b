package plugin

import "fmt"

// Object is one parsed top-level element.
type Object struct {
	ID    string
	Tag   string
	Value any
}

// Store keeps parsed objects in document order and indexes those with an id.
type Store struct {
	objects []Object
	byID    map[string]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byID: map[string]int{}}
}

// Put appends an object. Ids must be unique; an empty id is not indexed.
func (s *Store) Put(id, tag string, value any) error {
	if id != "" {
		if _, exists := s.byID[id]; exists {
			return fmt.Errorf("plugin: duplicate id %q", id)
		}
		s.byID[id] = len(s.objects)
	}
	s.objects = append(s.objects, Object{ID: id, Tag: tag, Value: value})
	return nil
}

// Lookup implements Scope.
func (s *Store) Lookup(id string) (any, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.objects[i].Value, true
}

// Objects returns every stored object in document order.
func (s *Store) Objects() []Object {
	return append([]Object{}, s.objects...)
}

// First returns the first object parsed from an element with the given tag.
func (s *Store) First(tag string) (any, bool) {
	for _, obj := range s.objects {
		if obj.Tag == tag {
			return obj.Value, true
		}
	}
	return nil, false
}

// Len reports how many objects are stored.
func (s *Store) Len() int {
	return len(s.objects)
}
