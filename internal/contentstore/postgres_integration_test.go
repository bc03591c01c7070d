//go:build integration

package contentstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"credanchor/internal/contentstore"
	"credanchor/pkg/platform/sentinel"
	"credanchor/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *contentstore.Postgres
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = contentstore.NewPostgres(s.pg.Pool)
	s.Require().NoError(s.store.EnsureSchema(s.ctx))
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.Pool.Exec(s.ctx, `TRUNCATE content_blocks`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestPutGetRoundTrip() {
	data := []byte(`{"diagnosis":"Flu"}`)

	reference, err := s.store.Put(s.ctx, data)
	s.Require().NoError(err)
	s.NotEmpty(reference)

	got, err := s.store.Get(s.ctx, reference)
	s.Require().NoError(err)
	s.Equal(data, got)
	s.True(s.store.Has(s.ctx, reference))
}

func (s *PostgresStoreSuite) TestPutIsIdempotent() {
	data := []byte(`{"diagnosis":"Flu"}`)

	first, err := s.store.Put(s.ctx, data)
	s.Require().NoError(err)
	second, err := s.store.Put(s.ctx, data)
	s.Require().NoError(err)
	s.Equal(first, second)

	var count int
	err = s.pg.Pool.QueryRow(s.ctx, `SELECT count(*) FROM content_blocks`).Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *PostgresStoreSuite) TestGetUnknownReference() {
	reference, err := contentstore.Reference([]byte("never stored"))
	s.Require().NoError(err)

	_, err = s.store.Get(s.ctx, reference)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.False(s.store.Has(s.ctx, reference))
}

func (s *PostgresStoreSuite) TestGetDetectsCorruptedRow() {
	reference, err := s.store.Put(s.ctx, []byte(`{"diagnosis":"Flu"}`))
	s.Require().NoError(err)

	_, err = s.pg.Pool.Exec(s.ctx,
		`UPDATE content_blocks SET data = $1 WHERE reference = $2`,
		[]byte(`{"diagnosis":"Healthy"}`), reference)
	s.Require().NoError(err)

	_, err = s.store.Get(s.ctx, reference)
	s.Require().ErrorIs(err, sentinel.ErrMismatch)
}
