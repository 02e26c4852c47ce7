package datastores

import (
	"context"
	"errors"
)

type (
	PersonID = int64
	Person   struct {
		ID        PersonID
		FirstName string
		LastName  string
	}
)

type PersonsStore interface {
	FindAll(context.Context) ([]*Person, error)
	FindByID(context.Context, PersonID) (*Person, error)
	FindWithLastName(ctx context.Context, lastName string) ([]*Person, error)
	// Add stores p. A zero ID lets the store assign one.
	Add(ctx context.Context, p *Person) (*Person, error)
	// Update overwrites the names of the person with p.ID, never the ID itself.
	Update(ctx context.Context, p *Person) error
	// Delete is a no-op for unknown ids.
	Delete(context.Context, PersonID) error
	// Reset restores the [Seed] content.
	Reset(context.Context) error
}

var (
	ErrNotFound      = errors.New("person does not exist")
	ErrAlreadyExists = errors.New("person already exists")
)

// Seed returns a fresh copy of the initial content of a store.
func Seed() []*Person {
	return []*Person{
		{ID: 1, FirstName: "Jan", LastName: "Janssen"},
		{ID: 2, FirstName: "Pieter", LastName: "Pietersen"},
		{ID: 3, FirstName: "Erik", LastName: "Eriksen"},
	}
}
