package contentstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"credanchor/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) TestRoundTrip() {
	data := []byte(`{"diagnosis":"Flu"}`)

	reference, err := s.store.Put(s.ctx, data)
	s.Require().NoError(err)
	s.NotEmpty(reference)

	got, err := s.store.Get(s.ctx, reference)
	s.Require().NoError(err)
	s.Equal(data, got)
}

func (s *MemoryStoreSuite) TestIdenticalBytesShareAReference() {
	data := []byte(`{"a":1}`)

	first, err := s.store.Put(s.ctx, data)
	s.Require().NoError(err)
	second, err := s.store.Put(s.ctx, append([]byte(nil), data...))
	s.Require().NoError(err)

	s.Equal(first, second)
}

func (s *MemoryStoreSuite) TestDistinctBytesGetDistinctReferences() {
	first, err := s.store.Put(s.ctx, []byte(`{"a":1}`))
	s.Require().NoError(err)
	second, err := s.store.Put(s.ctx, []byte(`{"a":2}`))
	s.Require().NoError(err)

	s.NotEqual(first, second)
}

func (s *MemoryStoreSuite) TestMissingReferenceIsNotFound() {
	reference, err := Reference([]byte("never stored"))
	s.Require().NoError(err)

	_, err = s.store.Get(s.ctx, reference)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.False(s.store.Has(s.ctx, reference))
}

func (s *MemoryStoreSuite) TestMalformedReferenceRejected() {
	_, err := s.store.Get(s.ctx, "not-a-cid")
	s.Require().Error(err)
}

func (s *MemoryStoreSuite) TestFailureInjection() {
	s.store.FailPuts = true
	_, err := s.store.Put(s.ctx, []byte("x"))
	s.Require().ErrorIs(err, sentinel.ErrUnavailable)

	s.store.FailPuts = false
	reference, err := s.store.Put(s.ctx, []byte("x"))
	s.Require().NoError(err)

	s.store.FailGets = true
	_, err = s.store.Get(s.ctx, reference)
	s.Require().ErrorIs(err, sentinel.ErrUnavailable)
}

func TestReferenceIsDeterministic(t *testing.T) {
	data := []byte(`{"diagnosis":"Flu"}`)
	first, err := Reference(data)
	if err != nil {
		t.Fatalf("reference: %v", err)
	}
	second, err := Reference(data)
	if err != nil {
		t.Fatalf("reference: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical references, got %s and %s", first, second)
	}
	if _, err := ParseReference(first); err != nil {
		t.Fatalf("reference does not parse as a CID: %v", err)
	}
}
