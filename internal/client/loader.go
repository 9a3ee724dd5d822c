package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"exampro/internal/api"
)

// DataSource tells where the items of a category came from.
type DataSource int

const (
	Unavailable DataSource = iota
	Live
	Cached
)

func (s DataSource) String() string {
	switch s {
	case Live:
		return "live"
	case Cached:
		return "cached"
	default:
		return "unavailable"
	}
}

// Category is the settled result of fetching one kind of record.
type Category[T any] struct {
	Items  []T
	Source DataSource
	Err    error
}

type Dataset struct {
	Students Category[api.Student]
	Teachers Category[api.Teacher]
	Modules  Category[api.Module]
	Filieres Category[api.Filiere]
	Grades   Category[api.Grade]
	Exams    Category[api.Exam]
	LoadedAt time.Time
}

// Offline reports whether any category is not fresh from the server.
func (d Dataset) Offline() bool {
	for _, source := range d.sources() {
		if source != Live {
			return true
		}
	}
	return false
}

func (d Dataset) sources() []DataSource {
	return []DataSource{
		d.Students.Source, d.Teachers.Source, d.Modules.Source,
		d.Filieres.Source, d.Grades.Source, d.Exams.Source,
	}
}

type Fetcher interface {
	Students(ctx context.Context) ([]api.Student, error)
	Teachers(ctx context.Context) ([]api.Teacher, error)
	Modules(ctx context.Context) ([]api.Module, error)
	Filieres(ctx context.Context) ([]api.Filiere, error)
	Grades(ctx context.Context) ([]api.Grade, error)
	Exams(ctx context.Context) ([]api.Exam, error)
}

// Loader fetches every category concurrently and falls back to the last good
// value of a category when its fetch fails.
type Loader struct {
	fetch Fetcher
	now   func() time.Time

	mu   sync.Mutex
	last Dataset
}

func NewLoader(fetch Fetcher) *Loader {
	return &Loader{fetch: fetch, now: time.Now}
}

// Load returns once every category has settled. A failing category never
// cancels the others.
func (l *Loader) Load(ctx context.Context) Dataset {
	l.mu.Lock()
	prev := l.last
	l.mu.Unlock()

	var next Dataset
	var g errgroup.Group
	g.Go(func() error { next.Students = settle(ctx, l.fetch.Students, prev.Students); return nil })
	g.Go(func() error { next.Teachers = settle(ctx, l.fetch.Teachers, prev.Teachers); return nil })
	g.Go(func() error { next.Modules = settle(ctx, l.fetch.Modules, prev.Modules); return nil })
	g.Go(func() error { next.Filieres = settle(ctx, l.fetch.Filieres, prev.Filieres); return nil })
	g.Go(func() error { next.Grades = settle(ctx, l.fetch.Grades, prev.Grades); return nil })
	g.Go(func() error { next.Exams = settle(ctx, l.fetch.Exams, prev.Exams); return nil })
	_ = g.Wait()
	next.LoadedAt = l.now()

	l.mu.Lock()
	l.last = next
	l.mu.Unlock()
	return next
}

func settle[T any](ctx context.Context, fetch func(context.Context) ([]T, error), prev Category[T]) Category[T] {
	items, err := fetch(ctx)
	if err == nil {
		if items == nil {
			items = []T{}
		}
		return Category[T]{Items: items, Source: Live}
	}
	if prev.Source != Unavailable {
		return Category[T]{Items: prev.Items, Source: Cached, Err: err}
	}
	return Category[T]{Source: Unavailable, Err: err}
}
