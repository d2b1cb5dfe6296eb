package graph

import (
	"context"
	"errors"
	"net/url"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// cypherCall is one statement sent to a fakeSession.
type cypherCall struct {
	cypher string
	params map[string]any
}

// fakeSession stands in for a Bolt session. Statements are recorded and
// answered by respond, or by an empty result when respond is nil.
type fakeSession struct {
	calls   []cypherCall
	respond func(cypher string, params map[string]any) (resultIterator, error)
	closed  bool
}

func (s *fakeSession) Run(_ context.Context, cypher string, params map[string]any) (resultIterator, error) {
	s.calls = append(s.calls, cypherCall{cypher: cypher, params: params})
	if s.respond == nil {
		return &fakeRows{}, nil
	}
	return s.respond(cypher, params)
}

func (s *fakeSession) Close(context.Context) error {
	s.closed = true
	return nil
}

// fakeRows yields its records in order, then reports err.
type fakeRows struct {
	pending []*neo4j.Record
	current *neo4j.Record
	err     error
}

func (r *fakeRows) Next(context.Context) bool {
	if len(r.pending) == 0 {
		r.current = nil
		return false
	}
	r.current, r.pending = r.pending[0], r.pending[1:]
	return true
}

func (r *fakeRows) Record() *neo4j.Record { return r.current }

func (r *fakeRows) Err() error { return r.err }

// pathRows answers the shortest-path query with one alternating
// person, movie, person id list.
func pathRows(ids ...any) *fakeRows {
	return &fakeRows{pending: []*neo4j.Record{{Keys: []string{"ids"}, Values: []any{ids}}}}
}

// sessionFor hands out the same session for every query.
func sessionFor(s *fakeSession) sessionFactory {
	return func(context.Context) sessionRunner { return s }
}

// unreachable fails every query with err, like a mirror that is down.
func unreachable(err error) sessionFactory {
	return func(context.Context) sessionRunner {
		return &fakeSession{respond: func(string, map[string]any) (resultIterator, error) {
			return nil, err
		}}
	}
}

// fakeDriver satisfies neo4j.DriverWithContext; only Close is observed.
type fakeDriver struct {
	closed bool
}

func (d *fakeDriver) Close(context.Context) error {
	d.closed = true
	return nil
}

func (d *fakeDriver) ExecuteQueryBookmarkManager() neo4j.BookmarkManager { return nil }
func (d *fakeDriver) IsEncrypted() bool                                  { return false }
func (d *fakeDriver) Target() url.URL                                    { return url.URL{} }
func (d *fakeDriver) NewSession(context.Context, neo4j.SessionConfig) neo4j.SessionWithContext {
	return nil
}
func (d *fakeDriver) VerifyAuthentication(context.Context, *neo4j.AuthToken) error { return nil }
func (d *fakeDriver) VerifyConnectivity(context.Context) error                     { return nil }
func (d *fakeDriver) GetServerInfo(context.Context) (neo4j.ServerInfo, error) {
	return nil, errors.New("fake driver has no server")
}
