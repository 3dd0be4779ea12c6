package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres escreve direto no banco, sem passar pela API REST.
type Postgres struct {
	DB *pgxpool.Pool
}

func (p *Postgres) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	cols := "*"
	if len(q.Columns) > 0 {
		cols = joinIdents(q.Columns)
	}

	var params []any
	where, params := whereClause(q.Where, params)
	query := fmt.Sprintf("SELECT %s FROM %s%s", cols, ident(table), where)

	orderBy := q.OrderBy
	if orderBy == "" && q.Limit > 0 {
		orderBy = "id"
	}
	if orderBy != "" {
		query += " ORDER BY " + ident(orderBy)
	}
	if q.Limit > 0 {
		params = append(params, q.Offset, q.Limit)
		query += fmt.Sprintf(" OFFSET $%d LIMIT $%d", len(params)-1, len(params))
	}

	rows, err := p.DB.Query(ctx, query, params...)
	if err != nil {
		return nil, pgError("select", table, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, newError(KindDecode, "select", table, err)
	}

	out := make([]Row, len(maps))
	for i, m := range maps {
		for k, v := range m {
			m[k] = normalizeValue(v)
		}
		out[i] = m
	}
	return out, nil
}

func (p *Postgres) Insert(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	rows = withIDs(rows)
	cols := columnsOf(rows)

	var params []any
	values := make([]string, len(rows))
	for i, r := range rows {
		placeholders := make([]string, len(cols))
		for j, c := range cols {
			params = append(params, r[c])
			placeholders[j] = fmt.Sprintf("$%d", len(params))
		}
		values[i] = "(" + strings.Join(placeholders, ", ") + ")"
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		ident(table), joinIdents(cols), strings.Join(values, ", "),
	)
	if _, err := p.DB.Exec(ctx, query, params...); err != nil {
		return pgError("insert", table, err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, table string, where Eq, values Row) (int, error) {
	cols := make([]string, 0, len(values))
	for c := range values {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	var params []any
	sets := make([]string, len(cols))
	for i, c := range cols {
		params = append(params, values[c])
		sets[i] = fmt.Sprintf("%s = $%d", ident(c), len(params))
	}
	params = append(params, where.Value)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d",
		ident(table), strings.Join(sets, ", "), ident(where.Column), len(params),
	)
	tag, err := p.DB.Exec(ctx, query, params...)
	if err != nil {
		return 0, pgError("update", table, err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *Postgres) Delete(ctx context.Context, table, column string, values []any) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"DELETE FROM %s WHERE %s IN (%s)",
		ident(table), ident(column), strings.Join(placeholders, ","),
	)
	tag, err := p.DB.Exec(ctx, query, values...)
	if err != nil {
		return 0, pgError("delete", table, err)
	}
	return int(tag.RowsAffected()), nil
}

func whereClause(filters []Eq, params []any) (string, []any) {
	if len(filters) == 0 {
		return "", params
	}
	conds := make([]string, len(filters))
	for i, f := range filters {
		params = append(params, f.Value)
		conds[i] = fmt.Sprintf("%s = $%d", ident(f.Column), len(params))
	}
	return " WHERE " + strings.Join(conds, " AND "), params
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func joinIdents(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ident(c)
	}
	return strings.Join(out, ", ")
}

// pgError separa falhas do servidor (status) de falhas de conexão (transport).
func pgError(op, table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return newError(KindStatus, op, table, err)
	}
	return newError(KindTransport, op, table, err)
}

// columnsOf returns the sorted union of keys across rows.
func columnsOf(rows []Row) []string {
	seen := map[string]struct{}{}
	for _, r := range rows {
		for c := range r {
			seen[c] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for c := range seen {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// withIDs copies rows, adding a uuid id where none was given.
func withIDs(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		cp := make(Row, len(r)+1)
		for k, v := range r {
			cp[k] = v
		}
		if id, ok := cp["id"]; !ok || id == nil || id == "" {
			cp["id"] = uuid.New().String()
		}
		out[i] = cp
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case [16]byte:
		return uuid.UUID(t).String()
	case []byte:
		return string(t)
	default:
		return v
	}
}
