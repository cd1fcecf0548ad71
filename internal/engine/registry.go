package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// LoadFunc reads one source. LoadTable is the default.
type LoadFunc func(ctx context.Context, fsys fs.FS, src Source) (*Table, error)

type entry struct {
	once  sync.Once
	table *Table
	err   error
}

// Registry holds the raw tables of a session. Each source is loaded at most
// once; the table (or the load failure) is cached for the registry lifetime.
// Callers get the shared table and must treat it as read-only.
type Registry struct {
	fsys    fs.FS
	load    LoadFunc
	sources map[string]Source
	order   []string
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

type RegistryOption func(*Registry)

// WithLoader replaces the table loader.
func WithLoader(fn LoadFunc) RegistryOption {
	return func(r *Registry) { r.load = fn }
}

func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

func NewRegistry(fsys fs.FS, sources []Source, opts ...RegistryOption) *Registry {
	r := &Registry{
		fsys:    fsys,
		load:    LoadTable,
		sources: make(map[string]Source, len(sources)),
		logger:  slog.Default(),
		entries: make(map[string]*entry, len(sources)),
	}
	for _, s := range sources {
		if _, dup := r.sources[s.Name]; !dup {
			r.order = append(r.order, s.Name)
		}
		r.sources[s.Name] = s
	}
	for _, o := range opts {
		o(r)
	}
	r.logger = r.logger.With(slog.String("component", "table_registry"))
	return r
}

// Names returns the registered source names in manifest order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Table returns the named table, loading it on first use. Cancelling ctx
// never poisons the cache.
func (r *Registry) Table(ctx context.Context, name string) (*Table, error) {
	src, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown table %q", ErrSourceLoad, name)
	}

	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		e = &entry{}
		r.entries[name] = e
	}
	r.mu.Unlock()

	// The cached result must not depend on the first caller's deadline.
	e.once.Do(func() {
		e.table, e.err = r.load(context.WithoutCancel(ctx), r.fsys, src)
		if e.err != nil && !errors.Is(e.err, ErrSourceLoad) {
			e.err = fmt.Errorf("%w: %s: %w", ErrSourceLoad, name, e.err)
		}
		if e.err != nil {
			r.logger.Error("table load failed", slog.String("table", name), slog.Any("error", e.err))
		}
	})
	return e.table, e.err
}

// LoadAll loads every source concurrently and returns the first failure.
func (r *Registry) LoadAll(ctx context.Context) error {
	start := time.Now()
	var g errgroup.Group
	for _, name := range r.order {
		g.Go(func() error {
			_, err := r.Table(ctx, name)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	r.logger.Info("registry loaded",
		slog.Int("tables", len(r.order)),
		slog.Duration("took", time.Since(start)))
	return nil
}
