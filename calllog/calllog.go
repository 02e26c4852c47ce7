// Package calllog records which operations were entered and exited so that
// tests and operators can observe handler invocations.
package calllog

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

type Entry struct {
	Component string
	Message   string
}

func (e Entry) String() string { return e.Component + " " + e.Message }

type Logger interface {
	Debug(component, message string)
}

// InMemory keeps entries in append order until [InMemory.Reset].
type InMemory struct {
	mu      sync.Mutex
	entries []Entry
}

var _ Logger = (*InMemory)(nil)

func (l *InMemory) Debug(component, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Component: component, Message: message})
}

func (l *InMemory) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

func (l *InMemory) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Slog forwards entries to a [slog.Logger] at debug level.
type Slog struct{ Logger *slog.Logger }

func (l Slog) Debug(component, message string) {
	l.Logger.LogAttrs(context.Background(), slog.LevelDebug, message, slog.String("component", component))
}

// Tee sends every entry to all of its loggers.
type Tee []Logger

func (t Tee) Debug(component, message string) {
	for _, l := range t {
		l.Debug(component, message)
	}
}
