// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package lifecycle tracks concurrently in-flight request identifiers.
//
// A Store records which requests have been registered, which have been
// cancelled or completed, and which single identifier is "current",
// always the most recently registered one, even while earlier requests
// are still in flight. Current is a last-writer-wins convenience for a
// single-active-focus UI, not a substitute for per-request identifiers,
// which callers running truly concurrent requests must retain
// themselves.
//
// Cancellation is advisory: Cancel marks a flag that callers poll at
// safe checkpoints (typically before rendering a response) and never
// turns in-flight work into an error. A transport that wants real
// cancellation can additionally derive from Context, which Cancel also
// cancels; a result already produced by the time the flag is checked
// stays valid either way.
package lifecycle

import (
	"context"
	"sync"

	"github.com/restfire/restfire/request"
)

// A Store is a registry of in-flight request identifiers. Construct
// one per engine with NewStore; all methods are safe for concurrent
// use.
type Store struct {
	mu        sync.Mutex
	requests  map[string]*request.Request
	cancelled map[string]struct{}
	completed map[string]struct{}
	contexts  map[string]context.Context
	cancels   map[string]context.CancelFunc
	current   string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		requests:  make(map[string]*request.Request),
		cancelled: make(map[string]struct{}),
		completed: make(map[string]struct{}),
		contexts:  make(map[string]context.Context),
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Register stores req under id and unconditionally makes id the
// current identifier. Registering a second request while the first is
// still in flight moves the current pointer to the second one.
func (s *Store) Register(id string, req *request.Request) {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.cancels[id]; ok {
		old()
	}
	s.requests[id] = req
	s.contexts[id] = ctx
	s.cancels[id] = cancel
	s.current = id
}

// Current returns the request registered under the current identifier.
// The second return value is false when no request has been registered
// yet, or the current identifier references nothing.
func (s *Store) Current() (*request.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[s.current]
	return req, ok
}

// CurrentID returns the current identifier, or "" if none.
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Cancel marks id cancelled. It is idempotent and non-blocking, and
// it never aborts work that has already produced a result: callers
// observe the flag via IsCancelled and discard results themselves.
// Transports holding the id's Context see it cancelled as well.
func (s *Store) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled[id] = struct{}{}
	if cancel, ok := s.cancels[id]; ok {
		cancel()
	}
}

// CancelCurrent cancels the current identifier, if any.
func (s *Store) CancelCurrent() {
	s.mu.Lock()
	id := s.current
	s.mu.Unlock()
	if id != "" {
		s.Cancel(id)
	}
}

// IsCancelled reports whether id has been cancelled.
func (s *Store) IsCancelled(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cancelled[id]
	return ok
}

// Complete marks id completed. It is idempotent.
func (s *Store) Complete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[id] = struct{}{}
}

// CompleteCurrent completes the current identifier, if any.
func (s *Store) CompleteCurrent() {
	s.mu.Lock()
	id := s.current
	s.mu.Unlock()
	if id != "" {
		s.Complete(id)
	}
}

// IsCompleted reports whether id has been completed.
func (s *Store) IsCompleted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.completed[id]
	return ok
}

// IsCurrentCompleted reports whether the current identifier has been
// completed. It is false when nothing has been registered.
func (s *Store) IsCurrentCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == "" {
		return false
	}
	_, ok := s.completed[s.current]
	return ok
}

// Context returns a context cancelled when id is cancelled. For an
// unknown id it returns the background context.
func (s *Store) Context(id string) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx, ok := s.contexts[id]; ok {
		return ctx
	}
	return context.Background()
}
