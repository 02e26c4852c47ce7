package datastores

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	dialectPostgres = "postgres"

	colID        = "id"
	colFirstName = "first_name"
	colLastName  = "last_name"

	sqlStateUniqueViolation = "23505"
)

// PersonsPostgres implements [PersonsStore] on a Postgres table.
type PersonsPostgres struct {
	pool  *pgxpool.Pool
	table string
}

var _ PersonsStore = (*PersonsPostgres)(nil)

type PostgresOption func(*PersonsPostgres)

// WithTableName overrides the default "persons" table.
func WithTableName(name string) PostgresOption {
	return func(s *PersonsPostgres) { s.table = name }
}

// NewPersonsPostgres creates the table if needed. The pool is owned by the caller.
func NewPersonsPostgres(ctx context.Context, pool *pgxpool.Pool, opts ...PostgresOption) (*PersonsPostgres, error) {
	s := &PersonsPostgres{pool: pool, table: "persons"}
	for _, opt := range opts {
		opt(s)
	}
	_, err := pool.Exec(ctx, s.createTableSQL())
	if err != nil {
		return nil, fmt.Errorf("create table %s: %w", s.table, err)
	}
	return s, nil
}

// Ping reports whether the database can be reached.
func (s *PersonsPostgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PersonsPostgres) FindAll(ctx context.Context) ([]*Person, error) {
	query, args, err := s.selectQuery().ToSQL()
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, query, args)
}

func (s *PersonsPostgres) FindByID(ctx context.Context, id PersonID) (*Person, error) {
	query, args, err := s.selectQuery().Where(goqu.C(colID).Eq(id)).ToSQL()
	if err != nil {
		return nil, err
	}
	persons, err := s.collect(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(persons) == 0 {
		return nil, ErrNotFound
	}
	return persons[0], nil
}

func (s *PersonsPostgres) FindWithLastName(ctx context.Context, lastName string) ([]*Person, error) {
	query, args, err := s.selectQuery().Where(goqu.C(colLastName).Eq(lastName)).ToSQL()
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, query, args)
}

func (s *PersonsPostgres) Add(ctx context.Context, p *Person) (*Person, error) {
	query, args, err := s.insertQuery(p).ToSQL()
	if err != nil {
		return nil, err
	}

	added := *p
	err = s.pool.QueryRow(ctx, query, args...).Scan(&added.ID)
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation:
		return nil, ErrAlreadyExists
	case err != nil:
		return nil, err
	}

	if p.ID != 0 {
		_, err = s.pool.Exec(ctx, s.syncSequenceSQL())
		if err != nil {
			return nil, fmt.Errorf("sync id sequence: %w", err)
		}
	}
	return &added, nil
}

func (s *PersonsPostgres) Update(ctx context.Context, p *Person) error {
	query, args, err := s.updateQuery(p).ToSQL()
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PersonsPostgres) Delete(ctx context.Context, id PersonID) error {
	query, args, err := s.deleteQuery(id).ToSQL()
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, query, args...)
	return err
}

func (s *PersonsPostgres) Reset(ctx context.Context) error {
	truncate, _, err := goqu.Dialect(dialectPostgres).Truncate(s.table).ToSQL()
	if err != nil {
		return err
	}
	insert, args, err := s.seedQuery().ToSQL()
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, truncate)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, insert, args...)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, s.syncSequenceSQL())
		return err
	})
}

func (s *PersonsPostgres) collect(ctx context.Context, query string, args []any) ([]*Person, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	persons, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[Person])
	if err != nil {
		return nil, err
	}
	if persons == nil {
		persons = make([]*Person, 0)
	}
	return persons, nil
}

func (s *PersonsPostgres) selectQuery() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(s.table).
		Select(colID, colFirstName, colLastName).
		Order(goqu.I(colID).Asc()).
		Prepared(true)
}

func (s *PersonsPostgres) insertQuery(p *Person) *goqu.InsertDataset {
	record := goqu.Record{colFirstName: p.FirstName, colLastName: p.LastName}
	if p.ID != 0 {
		record[colID] = p.ID
	}
	return goqu.Dialect(dialectPostgres).
		Insert(s.table).
		Rows(record).
		Returning(colID).
		Prepared(true)
}

func (s *PersonsPostgres) seedQuery() *goqu.InsertDataset {
	var rows []any
	for _, p := range Seed() {
		rows = append(rows, goqu.Record{colID: p.ID, colFirstName: p.FirstName, colLastName: p.LastName})
	}
	return goqu.Dialect(dialectPostgres).
		Insert(s.table).
		Rows(rows...).
		Prepared(true)
}

func (s *PersonsPostgres) updateQuery(p *Person) *goqu.UpdateDataset {
	return goqu.Dialect(dialectPostgres).
		Update(s.table).
		Set(goqu.Record{colFirstName: p.FirstName, colLastName: p.LastName}).
		Where(goqu.C(colID).Eq(p.ID)).
		Prepared(true)
}

func (s *PersonsPostgres) deleteQuery(id PersonID) *goqu.DeleteDataset {
	return goqu.Dialect(dialectPostgres).
		Delete(s.table).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true)
}

func (s *PersonsPostgres) createTableSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s BIGSERIAL PRIMARY KEY,
	%s TEXT NOT NULL,
	%s TEXT NOT NULL
)`, pgx.Identifier{s.table}.Sanitize(), colID, colFirstName, colLastName)
}

// syncSequenceSQL moves the id sequence past caller supplied ids.
func (s *PersonsPostgres) syncSequenceSQL() string {
	table := pgx.Identifier{s.table}.Sanitize()
	return fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', '%s'), (SELECT COALESCE(MAX(%s), 0) + 1 FROM %s), false)`,
		table, colID, colID, table)
}
