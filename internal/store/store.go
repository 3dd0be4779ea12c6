// Package store is the table-oriented view of the remote backend used by the
// sync flows: select with equality filters and offset ranges, batch insert,
// update by column, delete by id list.
package store

import (
	"context"
	"errors"
	"fmt"
)

type Row = map[string]any

// Eq é um filtro de igualdade coluna = valor.
type Eq struct {
	Column string
	Value  any
}

type Query struct {
	Columns []string // vazio = todas
	Where   []Eq
	OrderBy string
	Offset  int
	Limit   int // 0 = sem limite
}

// Store is implemented by every backend.
type Store interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, rows []Row) error
	// Update sets values on every row matching where and returns how many matched.
	Update(ctx context.Context, table string, where Eq, values Row) (int, error)
	// Delete removes rows whose column is in values and returns how many were removed.
	Delete(ctx context.Context, table, column string, values []any) (int, error)
}

// Kind classifies a store failure so callers can decide to skip, default or abort.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindStatus
	KindDecode
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind   Kind
	Op     string
	Table  string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s (status %d): %v", e.Op, e.Table, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Table, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op, table string, err error) *Error {
	return &Error{Kind: kind, Op: op, Table: table, Err: err}
}

// SelectAll pages through a table with a fixed page size until a page comes
// back shorter than the page size.
func SelectAll(ctx context.Context, s Store, table string, q Query, pageSize int) ([]Row, error) {
	var all []Row
	for page := 0; ; page++ {
		q.Offset = page * pageSize
		q.Limit = pageSize
		rows, err := s.Select(ctx, table, q)
		if err != nil {
			return all, err
		}
		all = append(all, rows...)
		if len(rows) < pageSize {
			return all, nil
		}
	}
}

// Chunks splits rows into slices of at most size elements.
func Chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}
