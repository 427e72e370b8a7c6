package db

import (
	"context"
	"database/sql"
	"fmt"

	"freight-bid-service/internal/config"

	_ "github.com/lib/pq"
)

// Connection represents a database connection
type Connection struct {
	db *sql.DB
}

// NewConnection creates a new database connection
func NewConnection(config *config.Config) (*Connection, error) {
	db, err := sql.Open("postgres", config.Database.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(config.Database.MaxOpenConns)
	db.SetMaxIdleConns(config.Database.MaxIdleConns)

	return &Connection{db: db}, nil
}

// GetDB returns the underlying sql.DB instance
func (client *Connection) GetDB() *sql.DB {
	return client.db
}

// Close closes the database connection
func (client *Connection) Close() error {
	return client.db.Close()
}

// ExecuteTransaction executes a function within a transaction
func (client *Connection) ExecuteTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := client.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
