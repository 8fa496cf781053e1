// Package streams defines the resources the tap extracts from BambooHR.
//
// A Stream knows its name, primary key and schema, and produces normalized
// records. Schemas are computed on first use and reused for the lifetime of
// the stream value.
package streams

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/bamboohr"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// Stream is one extractable resource.
type Stream interface {
	// Name is the stream name records are emitted under.
	Name() string

	// KeyProperties are the fields that identify a record.
	KeyProperties() []string

	// Schema returns the stream's schema. It is computed once.
	Schema(ctx context.Context) (fields.Schema, error)

	// Records calls emit with every normalized record. An error from emit
	// stops extraction and is returned.
	Records(ctx context.Context, emit func(fields.Record) error) error
}

// API is the part of the BambooHR client streams use.
type API interface {
	Directory(ctx context.Context) (*bamboohr.Directory, error)
	MetaFields(ctx context.Context) ([]fields.MetaField, error)
	MetaTables(ctx context.Context) ([]bamboohr.Table, error)
	MetaLists(ctx context.Context) ([]bamboohr.ListField, error)
	CustomReport(ctx context.Context, req bamboohr.CustomReportRequest) (*bamboohr.CustomReport, error)
	TimeOffRequests(ctx context.Context, start, end time.Time) ([]fields.Record, error)
	ChangedTable(ctx context.Context, table string, since time.Time) (*bamboohr.ChangedTable, error)
	Photo(ctx context.Context, employeeID, size string) (*bamboohr.Photo, error)
}

var _ API = (*bamboohr.Client)(nil)

// lazy holds a value computed on first use.
type lazy[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (l *lazy[T]) get(fn func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.val, l.err = fn()
	})
	return l.val, l.err
}

// source shares metadata responses between the streams of one run.
type source struct {
	api        API
	directory  lazy[*bamboohr.Directory]
	metaFields lazy[[]fields.MetaField]
	metaTables lazy[[]bamboohr.Table]
}

func newSource(api API) *source {
	return &source{api: api}
}

func (s *source) Directory(ctx context.Context) (*bamboohr.Directory, error) {
	return s.directory.get(func() (*bamboohr.Directory, error) {
		return s.api.Directory(ctx)
	})
}

func (s *source) MetaFields(ctx context.Context) ([]fields.MetaField, error) {
	return s.metaFields.get(func() ([]fields.MetaField, error) {
		return s.api.MetaFields(ctx)
	})
}

func (s *source) MetaTables(ctx context.Context) ([]bamboohr.Table, error) {
	return s.metaTables.get(func() ([]bamboohr.Table, error) {
		return s.api.MetaTables(ctx)
	})
}

// emitNormalized returns an emit function that normalizes records against
// schema before passing them on.
func emitNormalized(ctx context.Context, schema fields.Schema, emit func(fields.Record) error) func(fields.Record) error {
	n := fields.NewNormalizer(schema)
	return func(rec fields.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return emit(n.Normalize(rec))
	}
}

// idString renders a decoded JSON id as a string.
func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
