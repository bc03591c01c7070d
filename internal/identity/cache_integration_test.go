//go:build integration

package identity_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credanchor/internal/identity"
	"credanchor/internal/ledger/devnet"
	dErrors "credanchor/pkg/domain-errors"
	"credanchor/pkg/testutil/containers"
)

func TestResolveUsesRedisCache(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ledger := devnet.New(1_000_000)
	service := identity.NewService(ledger, rc.Client, logger, 1000)

	created, err := service.Create(ctx)
	require.NoError(t, err)

	record, err := service.Resolve(ctx, created.DID)
	require.NoError(t, err)
	assert.Equal(t, created.PublicKey, record.PublicKey)

	// The resolution landed in Redis with a bounded TTL.
	key := "credanchor:resolve:" + created.DID
	ttl, err := rc.Client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, identity.ResolveCacheTTL)

	// A second service over an empty ledger but the same Redis still resolves
	// the DID, proving the ledger was not consulted.
	cachedOnly := identity.NewService(devnet.New(1_000_000), rc.Client, logger, 1000)
	cachedRecord, err := cachedOnly.Resolve(ctx, created.DID)
	require.NoError(t, err)
	assert.Equal(t, record.PublicKey, cachedRecord.PublicKey)
	assert.Equal(t, record.Document, cachedRecord.Document)

	// Once the cache entry is gone, the empty ledger shows through.
	require.NoError(t, rc.FlushAll(ctx))
	_, err = cachedOnly.Resolve(ctx, created.DID)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeResolutionFailed))
}
