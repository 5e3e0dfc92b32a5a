package repository

import (
	"context"
	"fmt"
	"time"

	"voiceshop/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const listProductsQuery = `
		SELECT
			id, title, price, category,
			COALESCE(description, '') AS description,
			COALESCE(image, '') AS image
		FROM products
		ORDER BY id
	`

// PostgresRepository handles catalog queries
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection pool
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// ListProducts returns the whole catalog ordered by id
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	if err := r.db.SelectContext(ctx, &products, listProductsQuery); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
