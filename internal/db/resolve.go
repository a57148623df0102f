package db

import (
	"context"
	"strings"

	"github.com/tordrt/inferschema/internal/errs"
)

// Opener opens a connection for a connection string already matched to
// its backend
type Opener func(ctx context.Context, connString string) (Connection, error)

type backendEntry struct {
	backend  Backend
	prefixes []string
	// catchAll backends accept strings no other backend claims, such as
	// plain file paths for SQLite.
	catchAll bool
	open     Opener
}

// Resolver selects and opens a backend from a connection string
type Resolver struct {
	entries []backendEntry
}

// NewResolver creates a resolver with the given backends enabled.
// With no arguments all built-in backends are enabled.
func NewResolver(backends ...Backend) *Resolver {
	if len(backends) == 0 {
		backends = []Backend{BackendPostgres, BackendMySQL, BackendSQLite}
	}

	r := &Resolver{}
	for _, b := range backends {
		switch b {
		case BackendPostgres:
			r.Register(BackendPostgres, []string{"postgres://", "postgresql://"}, false, openPostgres)
		case BackendMySQL:
			r.Register(BackendMySQL, []string{"mysql://"}, false, openMySQL)
		case BackendSQLite:
			r.Register(BackendSQLite, []string{"sqlite://", "file:"}, true, openSQLite)
		}
	}
	return r
}

// Register adds a backend, replacing any existing entry for b
func (r *Resolver) Register(b Backend, prefixes []string, catchAll bool, open Opener) {
	entry := backendEntry{backend: b, prefixes: prefixes, catchAll: catchAll, open: open}
	for i := range r.entries {
		if r.entries[i].backend == b {
			r.entries[i] = entry
			return
		}
	}
	r.entries = append(r.entries, entry)
}

// Backends lists the enabled backends in registration order
func (r *Resolver) Backends() []Backend {
	out := make([]Backend, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.backend
	}
	return out
}

// Select determines the backend for connString without connecting
func (r *Resolver) Select(connString string) (Backend, error) {
	entry, err := r.selectEntry(connString)
	if err != nil {
		return "", err
	}
	return entry.backend, nil
}

func (r *Resolver) selectEntry(connString string) (*backendEntry, error) {
	for i := range r.entries {
		for _, p := range r.entries[i].prefixes {
			if strings.HasPrefix(connString, p) {
				return &r.entries[i], nil
			}
		}
	}

	for i := range r.entries {
		if r.entries[i].catchAll {
			return &r.entries[i], nil
		}
	}

	if len(r.entries) == 1 {
		return &r.entries[0], nil
	}

	return nil, errs.UnrecognizedConnectionString(connString)
}

// Resolve selects the backend for connString and opens a connection.
// The caller owns the connection and must Close it.
func (r *Resolver) Resolve(ctx context.Context, connString string) (Connection, error) {
	entry, err := r.selectEntry(connString)
	if err != nil {
		return nil, err
	}

	conn, err := entry.open(ctx, connString)
	if err != nil {
		return nil, errs.ConnectionFailed(connString, err)
	}
	return conn, nil
}

// Resolve opens connString with all built-in backends enabled
func Resolve(ctx context.Context, connString string) (Connection, error) {
	return NewResolver().Resolve(ctx, connString)
}
