package datastores

import (
	"context"
	"slices"
	"sync"
)

// PersonsInmem implements [PersonsStore].
//
// All access is serialized by a single mutex and callers only ever see copies,
// so concurrent writers cannot corrupt the stored records.
type PersonsInmem struct {
	mu      sync.Mutex
	seed    []*Person
	persons []*Person
}

var _ PersonsStore = (*PersonsInmem)(nil)

// NewPersonsInmem returns a store holding ps. Reset restores ps, or [Seed] if ps is empty.
func NewPersonsInmem(ps ...*Person) *PersonsInmem {
	if len(ps) == 0 {
		ps = Seed()
	}
	s := &PersonsInmem{seed: clone(ps)}
	s.persons = clone(s.seed)
	return s
}

func (s *PersonsInmem) FindAll(_ context.Context) ([]*Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.persons), nil
}

func (s *PersonsInmem) FindByID(_ context.Context, id PersonID) (*Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.indexOf(id)
	if index < 0 {
		return nil, ErrNotFound
	}
	p := *s.persons[index]
	return &p, nil
}

func (s *PersonsInmem) FindWithLastName(_ context.Context, lastName string) ([]*Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := make([]*Person, 0)
	for _, p := range s.persons {
		if p.LastName == lastName {
			c := *p
			found = append(found, &c)
		}
	}
	return found, nil
}

func (s *PersonsInmem) Add(_ context.Context, p *Person) (*Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *p
	switch {
	case stored.ID == 0:
		stored.ID = s.nextID()
	case s.indexOf(stored.ID) >= 0:
		return nil, ErrAlreadyExists
	}
	s.persons = append(s.persons, &stored)
	added := stored
	return &added, nil
}

func (s *PersonsInmem) Update(_ context.Context, p *Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.indexOf(p.ID)
	if index < 0 {
		return ErrNotFound
	}
	s.persons[index].FirstName = p.FirstName
	s.persons[index].LastName = p.LastName
	return nil
}

func (s *PersonsInmem) Delete(_ context.Context, id PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persons = slices.DeleteFunc(s.persons, func(p *Person) bool { return p.ID == id })
	return nil
}

func (s *PersonsInmem) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persons = clone(s.seed)
	return nil
}

func (s *PersonsInmem) indexOf(id PersonID) int {
	return slices.IndexFunc(s.persons, func(p *Person) bool { return p.ID == id })
}

func (s *PersonsInmem) nextID() PersonID {
	var highest PersonID
	for _, p := range s.persons {
		highest = max(highest, p.ID)
	}
	return highest + 1
}

func clone(ps []*Person) []*Person {
	cs := make([]*Person, 0, len(ps))
	for _, p := range ps {
		c := *p
		cs = append(cs, &c)
	}
	return cs
}
