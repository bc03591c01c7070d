package identity

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"credanchor/internal/keys"
	"credanchor/internal/ledger/devnet"
	dErrors "credanchor/pkg/domain-errors"
)

type IdentityServiceSuite struct {
	suite.Suite
	ledger  *devnet.Ledger
	service *Service
	ctx     context.Context
}

func (s *IdentityServiceSuite) SetupTest() {
	s.ledger = devnet.New(1_000_000)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.ledger, nil, logger, 1000)
	s.ctx = context.Background()
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) TestCreateThenResolve() {
	identity, err := s.service.Create(s.ctx)
	s.Require().NoError(err)
	s.NotEmpty(identity.AccountID)
	s.NotEmpty(identity.PrivateKey)
	s.Equal("did:anchor:"+identity.AccountID, identity.DID)

	// The published key must be usable for verification later.
	_, err = keys.DecodePublic(identity.PublicKey)
	s.Require().NoError(err)

	record, err := s.service.Resolve(s.ctx, identity.DID)
	s.Require().NoError(err)
	s.Equal(identity.DID, record.DID)
	s.Equal(identity.DID, record.Document.ID)
	s.Equal(identity.PublicKey, record.PublicKey)
	s.Equal(uint64(1000), record.Balance)

	s.Require().Len(record.Document.VerificationMethod, 1)
	s.Equal(identity.DID+"#key-1", record.Document.VerificationMethod[0].ID)
}

func (s *IdentityServiceSuite) TestResolveRejectsMalformedDIDs() {
	for _, bad := range []string{"", "not-a-did", "did:web:example.com", "did:anchor:"} {
		_, err := s.service.Resolve(s.ctx, bad)
		s.Require().Error(err, "expected %q to fail", bad)
		s.True(dErrors.Is(err, dErrors.CodeInvalidDID), "expected invalid_did for %q, got %v", bad, err)
	}
}

func (s *IdentityServiceSuite) TestResolveUnknownAccountFails() {
	_, err := s.service.Resolve(s.ctx, "did:anchor:0.0.4242")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeResolutionFailed))
}

func (s *IdentityServiceSuite) TestCreateSurfacesLedgerRejection() {
	s.ledger.FailCreates = true
	_, err := s.service.Create(s.ctx)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeRegistrationFailed))
}
