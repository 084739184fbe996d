package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

// Resolver maps location schemes to the connection that serves them.
type Resolver struct {
	mu    sync.RWMutex
	conns map[string]StorageConnection
}

// NewResolver registers each connection under the schemes it reports.
func NewResolver(conns ...StorageConnection) *Resolver {
	r := &Resolver{conns: make(map[string]StorageConnection)}
	for _, c := range conns {
		r.Register(c)
	}
	return r
}

// Register adds conn. A connection registered later for the same scheme replaces the earlier one.
func (r *Resolver) Register(conn StorageConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := conn.(Schemes)
	if !ok {
		logger.Warnf("Storage connection '%s' does not report any scheme; ignored.", conn.Name())
		return
	}
	for _, scheme := range s.Schemes() {
		r.conns[scheme] = conn
	}
}

// Resolve returns the connection serving loc.
func (r *Resolver) Resolve(loc Location) (StorageConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[loc.Scheme]
	if !ok {
		return nil, fmt.Errorf("no storage adapter configured for scheme '%s'", loc.Scheme)
	}
	return conn, nil
}

// Open parses raw and downloads it through the matching connection.
func (r *Resolver) Open(ctx context.Context, raw string) (io.ReadCloser, Location, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, loc, err
	}
	conn, err := r.Resolve(loc)
	if err != nil {
		return nil, loc, err
	}
	rc, err := conn.Download(ctx, loc.Bucket, loc.Object)
	return rc, loc, err
}

// Publish parses raw and uploads data through the matching connection.
func (r *Resolver) Publish(ctx context.Context, raw string, data io.Reader, contentType string) error {
	loc, err := ParseLocation(raw)
	if err != nil {
		return err
	}
	conn, err := r.Resolve(loc)
	if err != nil {
		return err
	}
	return conn.Upload(ctx, loc.Bucket, loc.Object, data, contentType)
}

// Close closes every registered connection once.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[StorageConnection]bool)
	var firstErr error
	for _, c := range r.conns {
		if seen[c] {
			continue
		}
		seen[c] = true
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
