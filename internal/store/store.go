// Package store keeps items in a relational table.
//
// Every operation is a single parameterized statement against the items
// table. Nothing is cached: reads always go to the database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Makepad-fr/items/internal/logging"
	"github.com/Makepad-fr/items/internal/model"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("item not found")

const (
	selectAllStatement = "SELECT id, name, description FROM items"
	selectOneStatement = "SELECT id, name, description FROM items WHERE id = ?"
	insertStatement    = "INSERT INTO items (name, description) VALUES (?, ?)"
	updateStatement    = "UPDATE items SET name = ?, description = ? WHERE id = ?"
	deleteStatement    = "DELETE FROM items WHERE id = ?"
	pingStatement      = "SELECT 1"
)

// Store represents the items table behind a database handle.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open opens the database described by cfg, checks the connection once and,
// when cfg.Bootstrap is set, creates the items table if it is missing.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := dialect.dsn(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)

	s := NewWithDB(db, dialect, opts...)

	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := dialect.prepare(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.Bootstrap {
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	s.logger.Info("connected to database", "driver", string(dialect))
	return s, nil
}

// NewWithDB creates a store on an already opened database.
func NewWithDB(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: dialect, logger: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the items table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.createTableStatement()); err != nil {
		return fmt.Errorf("failed to create items table: %w", err)
	}
	return nil
}

// Ping runs a trivial query to check that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRowContext(ctx, pingStatement).Scan(&one)
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns every item in the order the database yields them.
func (s *Store) List(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, selectAllStatement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns the item with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (model.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, selectOneStatement, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, ErrNotFound
	}
	return item, err
}

// Create inserts a row and returns it with the id the database assigned.
func (s *Store) Create(ctx context.Context, name, description string) (model.Item, error) {
	res, err := s.db.ExecContext(ctx, insertStatement, name, description)
	if err != nil {
		return model.Item{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return model.Item{ID: id, Name: name, Description: description}, nil
}

// Update overwrites name and description of an existing row. The returned
// item reflects the submitted values; the row is not read back.
func (s *Store) Update(ctx context.Context, id int64, name, description string) (model.Item, error) {
	res, err := s.db.ExecContext(ctx, updateStatement, name, description, id)
	if err != nil {
		return model.Item{}, err
	}
	if err := requireAffected(res); err != nil {
		return model.Item{}, err
	}
	return model.Item{ID: id, Name: name, Description: description}, nil
}

// Delete removes the row with the given id, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, deleteStatement, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (model.Item, error) {
	var (
		item        model.Item
		name, descr sql.NullString
	)
	if err := row.Scan(&item.ID, &name, &descr); err != nil {
		return model.Item{}, err
	}
	item.Name = name.String
	item.Description = descr.String
	return item, nil
}
