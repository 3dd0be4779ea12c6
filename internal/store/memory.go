package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Store used for dry runs and tests.
// Rows are kept per table in insertion order.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]Row

	// Hooks de falha para testes; nil = sem falha.
	FailSelect func(table string, q Query) error
	FailInsert func(table string, rows []Row) error
	FailUpdate func(table string, where Eq) error

	// InsertCalls conta chamadas de Insert por tabela.
	InsertCalls map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		tables:      make(map[string][]Row),
		InsertCalls: make(map[string]int),
	}
}

// Seed inserts rows without counting calls or running hooks.
func (m *Memory) Seed(table string, rows ...Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append(m.tables[table], withIDs(rows)...)
}

// Rows returns a copy of every row in table.
func (m *Memory) Rows(table string) []Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Row, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		out = append(out, copyRow(r))
	}
	return out
}

func (m *Memory) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError(KindTransport, "select", table, err)
	}
	if m.FailSelect != nil {
		if err := m.FailSelect(table, q); err != nil {
			return nil, newError(KindTransport, "select", table, err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Row
	for _, r := range m.tables[table] {
		if matches(r, q.Where) {
			matched = append(matched, r)
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			return fmt.Sprint(matched[i][q.OrderBy]) < fmt.Sprint(matched[j][q.OrderBy])
		})
	}
	if q.Limit > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			end := q.Offset + q.Limit
			if end > len(matched) {
				end = len(matched)
			}
			matched = matched[q.Offset:end]
		}
	}

	out := make([]Row, 0, len(matched))
	for _, r := range matched {
		out = append(out, project(r, q.Columns))
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, table string, rows []Row) error {
	m.mu.Lock()
	m.InsertCalls[table]++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return newError(KindTransport, "insert", table, err)
	}
	if m.FailInsert != nil {
		if err := m.FailInsert(table, rows); err != nil {
			return newError(hookKind(err), "insert", table, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append(m.tables[table], withIDs(rows)...)
	return nil
}

func (m *Memory) Update(ctx context.Context, table string, where Eq, values Row) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, newError(KindTransport, "update", table, err)
	}
	if m.FailUpdate != nil {
		if err := m.FailUpdate(table, where); err != nil {
			return 0, newError(hookKind(err), "update", table, err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, r := range m.tables[table] {
		if !matches(r, []Eq{where}) {
			continue
		}
		for k, v := range values {
			r[k] = v
		}
		n++
	}
	return n, nil
}

func (m *Memory) Delete(ctx context.Context, table, column string, values []any) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, newError(KindTransport, "delete", table, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[string]bool, len(values))
	for _, v := range values {
		drop[fmt.Sprint(v)] = true
	}
	kept := m.tables[table][:0]
	n := 0
	for _, r := range m.tables[table] {
		if drop[fmt.Sprint(r[column])] {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.tables[table] = kept
	return n, nil
}

// hookKind classifies a hook failure the way the HTTP backend would: context
// errors are transport failures, anything else a rejected request.
func hookKind(err error) Kind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}
	return KindStatus
}

func matches(r Row, where []Eq) bool {
	for _, f := range where {
		if fmt.Sprint(r[f.Column]) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}

func project(r Row, cols []string) Row {
	if len(cols) == 0 {
		return copyRow(r)
	}
	out := make(Row, len(cols))
	for _, c := range cols {
		out[c] = r[c]
	}
	return out
}

func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
