// Package identity implements the identity registry: creating ledger-backed
// identities and resolving DIDs to their published key and account state.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"credanchor/internal/domain"
	"credanchor/internal/keys"
	"credanchor/internal/ledger"
	dErrors "credanchor/pkg/domain-errors"
	"credanchor/pkg/platform/sentinel"
)

// ResolveCacheTTL bounds how long a resolution result may be served from
// cache. Identities are immutable in scope, so staleness only affects the
// reported balance.
const ResolveCacheTTL = 5 * time.Minute

// Service talks to the ledger for account state and optionally caches
// resolutions in Redis. A nil cache disables caching entirely.
type Service struct {
	ledger         ledger.Client
	cache          *redis.Client
	logger         *slog.Logger
	initialBalance uint64
}

func NewService(ledgerClient ledger.Client, cache *redis.Client, logger *slog.Logger, initialBalance uint64) *Service {
	return &Service{
		ledger:         ledgerClient,
		cache:          cache,
		logger:         logger,
		initialBalance: initialBalance,
	}
}

// Create generates a keypair, registers a funded ledger account for it, and
// returns the complete identity. The private key appears only in this return
// value.
func (s *Service) Create(ctx context.Context) (domain.Identity, error) {
	pair, err := keys.Generate()
	if err != nil {
		return domain.Identity{}, dErrors.Wrap(dErrors.CodeInternal, "keypair generation failed", err)
	}

	publicKey := keys.EncodePublic(pair.Public)
	account, err := s.ledger.CreateAccount(ctx, publicKey, s.initialBalance)
	if err != nil {
		return domain.Identity{}, dErrors.Wrap(dErrors.CodeRegistrationFailed, "ledger rejected account creation", err)
	}

	identity := domain.Identity{
		AccountID:  account.AccountID,
		DID:        domain.DIDFromAccount(account.AccountID),
		PublicKey:  publicKey,
		PrivateKey: keys.EncodePrivate(pair.Private),
	}
	s.logger.InfoContext(ctx, "identity created",
		"account_id", identity.AccountID,
		"did", identity.DID,
	)
	return identity, nil
}

// Resolve maps a DID onto its current ledger account state and DID document.
func (s *Service) Resolve(ctx context.Context, did string) (domain.IdentityRecord, error) {
	accountID, err := domain.ParseDID(did)
	if err != nil {
		return domain.IdentityRecord{}, dErrors.Wrap(dErrors.CodeInvalidDID, "DID does not match the did:anchor scheme", err)
	}

	if record, ok := s.cached(ctx, did); ok {
		return record, nil
	}

	account, err := s.ledger.AccountInfo(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.IdentityRecord{}, dErrors.Wrap(dErrors.CodeResolutionFailed, "no such account on the ledger", err)
		}
		return domain.IdentityRecord{}, dErrors.Wrap(dErrors.CodeResolutionFailed, "ledger query failed", err)
	}

	record := domain.IdentityRecord{
		DID:       did,
		AccountID: account.AccountID,
		PublicKey: account.PublicKey,
		Balance:   account.Balance,
		Document:  domain.NewDIDDocument(did, account.PublicKey),
	}
	s.cacheStore(ctx, did, record)
	return record, nil
}

func (s *Service) cached(ctx context.Context, did string) (domain.IdentityRecord, bool) {
	if s.cache == nil {
		return domain.IdentityRecord{}, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(did)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "resolve cache read failed", "did", did, "error", err)
		}
		return domain.IdentityRecord{}, false
	}
	var record domain.IdentityRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		s.logger.WarnContext(ctx, "resolve cache entry corrupt", "did", did, "error", err)
		return domain.IdentityRecord{}, false
	}
	return record, true
}

func (s *Service) cacheStore(ctx context.Context, did string, record domain.IdentityRecord) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(did), raw, ResolveCacheTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "resolve cache write failed", "did", did, "error", err)
	}
}

func cacheKey(did string) string {
	return "credanchor:resolve:" + did
}
