package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// resultIterator is the part of neo4j.ResultWithContext the engine reads.
type resultIterator interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// sessionRunner is the part of neo4j.SessionWithContext the engine and sync use.
type sessionRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (resultIterator, error)
	Close(ctx context.Context) error
}

// sessionFactory opens a sessionRunner.
type sessionFactory func(ctx context.Context) sessionRunner

type driverSession struct {
	session neo4j.SessionWithContext
}

func (s *driverSession) Run(ctx context.Context, cypher string, params map[string]any) (resultIterator, error) {
	return s.session.Run(ctx, cypher, params)
}

func (s *driverSession) Close(ctx context.Context) error {
	return s.session.Close(ctx)
}

func driverSessions(driver neo4j.DriverWithContext) sessionFactory {
	return func(ctx context.Context) sessionRunner {
		return &driverSession{session: driver.NewSession(ctx, neo4j.SessionConfig{})}
	}
}

// NewDriver connects to a Bolt endpoint and verifies connectivity.
func NewDriver(ctx context.Context, uri, username, password string) (neo4j.DriverWithContext, error) {
	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}
	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(context.Background())
		return nil, err
	}
	return driver, nil
}
