// Package source decides whether analytics and prediction run against the
// live store or the static snapshot.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OldStager01/car-analytics/pkg/database"
	"github.com/OldStager01/car-analytics/pkg/database/queries"
	"github.com/OldStager01/car-analytics/pkg/models"
)

// ErrSourceUnavailable means the live store could not serve a dataset.
// The resolver recovers from it by switching to the snapshot.
var ErrSourceUnavailable = errors.New("live store unavailable")

// Store is an established handle to the live store.
type Store interface {
	Cars(ctx context.Context) ([]models.Record, error)
	Ping(ctx context.Context) error
	Close() error
}

// Connection is the outcome of one connect attempt: either a Store or the
// reason the store is unavailable, never both.
type Connection struct {
	Store Store
	Err   error
}

func Connected(store Store) Connection {
	return Connection{Store: store}
}

// Unavailable wraps reason so that errors.Is(err, ErrSourceUnavailable)
// holds for every failed connection.
func Unavailable(reason error) Connection {
	if reason == nil {
		reason = errors.New("no reason given")
	}
	if !errors.Is(reason, ErrSourceUnavailable) {
		reason = fmt.Errorf("%w: %v", ErrSourceUnavailable, reason)
	}
	return Connection{Err: reason}
}

func (c Connection) Available() bool {
	return c.Store != nil
}

// Connector makes a single, bounded attempt to reach the live store.
type Connector interface {
	Connect(ctx context.Context) Connection
}

type opener func(ctx context.Context, cfg database.Config) (*database.DB, error)

// PostgresConnector connects with lib/pq. The ping timeout in Config
// bounds the attempt.
type PostgresConnector struct {
	cfg          database.Config
	queryTimeout time.Duration
	open         opener
}

func NewPostgresConnector(cfg database.Config, queryTimeout time.Duration) *PostgresConnector {
	return &PostgresConnector{
		cfg:          cfg,
		queryTimeout: queryTimeout,
		open:         database.New,
	}
}

func (c *PostgresConnector) Connect(ctx context.Context) Connection {
	db, err := c.open(ctx, c.cfg)
	if err != nil {
		return Unavailable(err)
	}
	return Connected(&postgresStore{
		db:           db,
		repo:         queries.NewCarRepository(db.DB),
		queryTimeout: c.queryTimeout,
	})
}

type postgresStore struct {
	db           *database.DB
	repo         *queries.CarRepository
	queryTimeout time.Duration
}

func (s *postgresStore) Cars(ctx context.Context) ([]models.Record, error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}
	return s.repo.All(ctx)
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}

// DisabledConnector is used when the live store is switched off in config.
type DisabledConnector struct{}

func (DisabledConnector) Connect(context.Context) Connection {
	return Unavailable(errors.New("live store disabled by configuration"))
}
