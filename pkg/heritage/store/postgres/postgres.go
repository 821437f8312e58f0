// Package postgres implements the document store on PostgreSQL. Each
// collection is a table of JSONB documents keyed by an internal sequence.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/heritage-content/pkg/heritage/store"
)

// DBTX is an interface that allows us to use either a pool or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store implements store.Store using PostgreSQL
type Store struct {
	db   DBTX
	pool *pgxpool.Pool
}

// Open creates a pool for databaseURL, pins the session search_path to
// schema (created if missing), verifies the connection and creates the
// tables and unique indexes described by specs.
func Open(ctx context.Context, databaseURL, schema string, specs ...store.CollectionSpec) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if schema != "" {
		if !identifierPattern.MatchString(schema) {
			return nil, fmt.Errorf("invalid schema name %q", schema)
		}
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	s := &Store{db: pool, pool: pool}
	if err := s.migrate(ctx, schema, specs); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection or transaction. Tables must already exist.
func New(db DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) migrate(ctx context.Context, schema string, specs []store.CollectionSpec) error {
	if schema != "" {
		if _, err := s.db.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
			return handlePostgresError("create schema", err)
		}
	}
	for _, spec := range specs {
		if !identifierPattern.MatchString(spec.Name) {
			return fmt.Errorf("invalid collection name %q", spec.Name)
		}
		table := pgx.Identifier{spec.Name}.Sanitize()
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			seq BIGSERIAL PRIMARY KEY,
			doc JSONB NOT NULL
		)`, table)
		if _, err := s.db.Exec(ctx, ddl); err != nil {
			return handlePostgresError("create table "+spec.Name, err)
		}
		for _, field := range spec.Unique {
			if !identifierPattern.MatchString(field) {
				return fmt.Errorf("invalid unique field %q", field)
			}
			index := pgx.Identifier{spec.Name + "_" + field + "_key"}.Sanitize()
			ddl := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s ((doc->>'%s'))`, index, table, field)
			if _, err := s.db.Exec(ctx, ddl); err != nil {
				return handlePostgresError("create index "+spec.Name, err)
			}
		}
	}
	return nil
}

// Collection returns a handle for the named table
func (s *Store) Collection(name string) store.Collection {
	return &Collection{db: s.db, name: name, table: pgx.Identifier{name}.Sanitize()}
}

// Ping verifies the pool can reach the server
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// Close releases the pool when the store owns it
func (s *Store) Close(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Collection implements store.Collection on one JSONB table
type Collection struct {
	db    DBTX
	name  string
	table string
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Count(ctx context.Context, filters ...store.Filter) (int64, error) {
	where, args, err := buildWhere(filters, nil)
	if err != nil {
		return 0, c.wrap("count", err)
	}
	var n int64
	if err := c.db.QueryRow(ctx, "SELECT count(*) FROM "+c.table+where, args...).Scan(&n); err != nil {
		return 0, c.wrap("count", err)
	}
	return n, nil
}

func (c *Collection) Find(ctx context.Context, opts store.FindOptions, results any) error {
	slice, elemType, err := store.SliceTarget(results)
	if err != nil {
		return c.wrap("find", err)
	}

	where, args, err := buildWhere(opts.Filters, nil)
	if err != nil {
		return c.wrap("find", err)
	}
	orderBy, args := buildOrderBy(opts.Sort, args)

	rows, err := c.db.Query(ctx, "SELECT doc FROM "+c.table+where+orderBy, args...)
	if err != nil {
		return c.wrap("find", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return c.wrap("find", err)
		}
		if err := store.AppendDecoded(slice, elemType, func(target any) error {
			return json.Unmarshal(raw, target)
		}); err != nil {
			return c.wrap("find", err)
		}
	}
	if err := rows.Err(); err != nil {
		return c.wrap("find", err)
	}
	return nil
}

func (c *Collection) FindOne(ctx context.Context, result any, filters ...store.Filter) error {
	where, args, err := buildWhere(filters, nil)
	if err != nil {
		return c.wrap("find one", err)
	}

	var raw []byte
	err = c.db.QueryRow(ctx, "SELECT doc FROM "+c.table+where+" ORDER BY seq LIMIT 1", args...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return c.wrap("find one", err)
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return c.wrap("find one", err)
	}
	return nil
}

func (c *Collection) InsertOne(ctx context.Context, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return c.wrap("insert", err)
	}
	if _, err := c.db.Exec(ctx, "INSERT INTO "+c.table+" (doc) VALUES ($1::jsonb)", raw); err != nil {
		return c.wrap("insert", err)
	}
	return nil
}

func (c *Collection) InsertMany(ctx context.Context, docs []any) error {
	if len(docs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return c.wrap("insert many", err)
		}
		batch.Queue("INSERT INTO "+c.table+" (doc) VALUES ($1::jsonb)", raw)
	}

	results := c.db.SendBatch(ctx, batch)
	defer results.Close()
	for range docs {
		if _, err := results.Exec(); err != nil {
			return c.wrap("insert many", err)
		}
	}
	return nil
}

func (c *Collection) SetOne(ctx context.Context, fields store.Fields, filters ...store.Filter) (int64, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return 0, c.wrap("update", err)
	}
	where, args, err := buildWhere(filters, []any{raw})
	if err != nil {
		return 0, c.wrap("update", err)
	}

	query := fmt.Sprintf(
		"UPDATE %[1]s SET doc = doc || $1::jsonb WHERE seq = (SELECT seq FROM %[1]s%[2]s ORDER BY seq LIMIT 1)",
		c.table, where)
	tag, err := c.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, c.wrap("update", err)
	}
	return tag.RowsAffected(), nil
}

func (c *Collection) DeleteOne(ctx context.Context, filters ...store.Filter) (int64, error) {
	where, args, err := buildWhere(filters, nil)
	if err != nil {
		return 0, c.wrap("delete", err)
	}

	query := fmt.Sprintf(
		"DELETE FROM %[1]s WHERE seq = (SELECT seq FROM %[1]s%[2]s ORDER BY seq LIMIT 1)",
		c.table, where)
	tag, err := c.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, c.wrap("delete", err)
	}
	return tag.RowsAffected(), nil
}

func (c *Collection) wrap(op string, err error) error {
	return &store.CollectionError{Collection: c.name, Op: op, Err: handlePostgresError(op, err)}
}

// buildWhere renders filters as a WHERE clause whose placeholders continue
// after the already-bound args.
func buildWhere(filters []store.Filter, args []any) (string, []any, error) {
	if len(filters) == 0 {
		return "", args, nil
	}

	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		switch f.Op {
		case store.OpEq:
			raw, err := json.Marshal(map[string]any{f.Field: f.Value})
			if err != nil {
				return "", nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
			}
			args = append(args, raw)
			clauses = append(clauses, fmt.Sprintf("doc @> $%d::jsonb", len(args)))
		case store.OpIContains:
			text, _ := f.Value.(string)
			args = append(args, f.Field, "%"+escapeLike(text)+"%")
			clauses = append(clauses, fmt.Sprintf(`doc->>$%d::text ILIKE $%d::text ESCAPE '\'`, len(args)-1, len(args)))
		default:
			return "", nil, fmt.Errorf("unsupported filter operator %d", f.Op)
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// buildOrderBy sorts on the JSONB value, casting timestamp fields so they
// compare chronologically rather than as text.
func buildOrderBy(sort store.Sort, args []any) (string, []any) {
	if sort.Field == "" {
		return " ORDER BY seq", args
	}
	args = append(args, sort.Field)
	expr := fmt.Sprintf("doc->$%d::text", len(args))
	if store.IsTimeField(sort.Field) {
		expr = fmt.Sprintf("(doc->>$%d::text)::timestamptz", len(args))
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, seq", expr, dir), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Error handling helper
func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return err
}
