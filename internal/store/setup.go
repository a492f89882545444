package store

import (
	"context"
	"fmt"
	"sync/atomic"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store is a wrapper around gorm.DB scoped to the meme tables.
//
// Concurrency: the active *gorm.DB pointer is stored in an atomic pointer so
// it can be swapped without blocking readers. Each operation opens its own
// session; there is no serialization point across concurrent slot updates.
type Store struct {
	cfg    Config
	client atomic.Pointer[gorm.DB]
}

// NewStore establishes the database connection and configures the pool.
func NewStore(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("store: invalid config: %w", err)
	}

	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("store: connecting to postgres: %w", err)
	}

	s := &Store{cfg: cfg}
	s.client.Store(conn)
	return s, nil
}

// NewStoreFromDB wraps an existing connection. Intended for tests.
func NewStoreFromDB(db *gorm.DB) *Store {
	s := &Store{}
	s.client.Store(db)
	return s
}

func connect(cfg Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DbName, cfg.SSLMode)

	database, err := gorm.Open(
		postgres.Open(dsn),
		&gorm.Config{
			TranslateError: true,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	instance, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgreSQL database instance: %w", err)
	}

	instance.SetMaxOpenConns(cfg.MaxOpenConns)
	instance.SetMaxIdleConns(cfg.MaxIdleConns)
	instance.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return database, nil
}

// db returns the active connection with the given context attached.
func (s *Store) db(ctx context.Context) *gorm.DB {
	return s.client.Load().WithContext(ctx)
}

// Ping verifies the connection is alive. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	instance, err := s.client.Load().DB()
	if err != nil {
		return err
	}
	return instance.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	instance, err := s.client.Load().DB()
	if err != nil {
		return err
	}
	return instance.Close()
}
