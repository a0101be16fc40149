package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	perrors "github.com/abgdnv/kasir/internal/product/errors"
)

// Dialect selects SQL syntax differences between the supported databases.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

const (
	columns      = "id, name, price, cost, stock, category, image_url, barcode"
	insertQuery  = "INSERT INTO products (name, price, cost, stock, category, image_url, barcode) VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id"
	updateQuery  = "UPDATE products SET name = ?, price = ?, cost = ?, stock = ?, category = ?, image_url = ?, barcode = ? WHERE id = ?"
	deleteQuery  = "DELETE FROM products WHERE id = ?"
	findAllQuery = "SELECT " + columns + " FROM products ORDER BY id"
	findOneQuery = "SELECT " + columns + " FROM products WHERE id = ?"
)

// SQLStore implements ProductStore on top of database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore creates a new instance of ProductStore using the given database handle.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Insert adds a new product and returns its generated ID.
func (s *SQLStore) Insert(ctx context.Context, row Row) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind(insertQuery),
		row.Name, row.Price, row.Cost, row.Stock, row.Category, row.ImageURL, row.Barcode,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", perrors.ErrCantCreateProduct, err)
	}
	return id, nil
}

// InsertAll adds the rows in one transaction. A failing row rolls back the whole batch.
func (s *SQLStore) InsertAll(ctx context.Context, rows []Row) (ids []int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", perrors.ErrCantCreateProduct, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.rebind(insertQuery))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", perrors.ErrCantCreateProduct, err)
	}
	defer func() { _ = stmt.Close() }()

	ids = make([]int64, len(rows))
	for i, row := range rows {
		err = stmt.QueryRowContext(ctx,
			row.Name, row.Price, row.Cost, row.Stock, row.Category, row.ImageURL, row.Barcode,
		).Scan(&ids[i])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", perrors.ErrCantCreateProduct, i+1, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", perrors.ErrCantCreateProduct, err)
	}
	return ids, nil
}

// Update overwrites an existing product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *SQLStore) Update(ctx context.Context, row Row) error {
	res, err := s.db.ExecContext(ctx, s.rebind(updateQuery),
		row.Name, row.Price, row.Cost, row.Stock, row.Category, row.ImageURL, row.Barcode, row.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if affected == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// Delete removes a product by its ID.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(deleteQuery), id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// FindAll retrieves all products ordered by ID.
func (s *SQLStore) FindAll(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, findAllQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	list := make([]Row, 0)
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	return list, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *SQLStore) FindByID(ctx context.Context, id int64) (*Row, error) {
	r, err := scanRow(s.db.QueryRowContext(ctx, s.rebind(findOneQuery), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &r, nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(sc scanner) (Row, error) {
	var r Row
	err := sc.Scan(&r.ID, &r.Name, &r.Price, &r.Cost, &r.Stock, &r.Category, &r.ImageURL, &r.Barcode)
	return r, err
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
