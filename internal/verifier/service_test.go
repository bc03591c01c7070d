package verifier

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credanchor/internal/anchorlog"
	"credanchor/internal/contentstore"
	"credanchor/internal/domain"
	"credanchor/internal/issuer"
	"credanchor/internal/keys"
	dErrors "credanchor/pkg/domain-errors"
)

// fakeResolver serves published keys from a map, standing in for the ledger.
type fakeResolver struct {
	records map[string]domain.IdentityRecord
}

func (f *fakeResolver) Resolve(_ context.Context, did string) (domain.IdentityRecord, error) {
	record, ok := f.records[did]
	if !ok {
		return domain.IdentityRecord{}, dErrors.New(dErrors.CodeResolutionFailed, "no such account on the ledger")
	}
	return record, nil
}

type fixture struct {
	store    *contentstore.Memory
	resolver *fakeResolver
	issuerv  *issuer.Service
	verifier *Service
	issuer   string
	key      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pair, err := keys.Generate()
	require.NoError(t, err)

	issuerDID := "did:anchor:0.0.99"
	store := contentstore.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := &fakeResolver{records: map[string]domain.IdentityRecord{
		issuerDID: {
			DID:       issuerDID,
			AccountID: "0.0.99",
			PublicKey: keys.EncodePublic(pair.Public),
			Document:  domain.NewDIDDocument(issuerDID, keys.EncodePublic(pair.Public)),
		},
	}}
	return &fixture{
		store:    store,
		resolver: resolver,
		issuerv:  issuer.NewService(store, anchorlog.NewMemory(), logger),
		verifier: NewService(resolver, store, logger),
		issuer:   issuerDID,
		key:      keys.EncodePrivate(pair.Private),
	}
}

func (f *fixture) issue(t *testing.T, document map[string]any) map[string]any {
	t.Helper()
	credential, err := f.issuerv.Issue(context.Background(), issuer.Request{
		SubjectDID:       "did:anchor:0.0.1001",
		Document:         document,
		IssuerDID:        f.issuer,
		IssuerPrivateKey: f.key,
	})
	require.NoError(t, err)
	asMap, err := credential.AsMap()
	require.NoError(t, err)
	return asMap
}

func TestVerifyAcceptsFreshlyIssuedCredential(t *testing.T) {
	f := newFixture(t)
	credential := f.issue(t, map[string]any{"diagnosis": "Flu"})

	result, err := f.verifier.Verify(context.Background(), credential, f.issuer)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.True(t, result.ContentAvailable)
	assert.Equal(t, "Flu", result.Document["diagnosis"])
}

func TestVerifyDetectsTamperedPayload(t *testing.T) {
	f := newFixture(t)

	mutations := []func(map[string]any){
		func(c map[string]any) {
			c["credentialSubject"].(map[string]any)["payload"].(map[string]any)["diagnosis"] = "Healthy"
		},
		func(c map[string]any) {
			c["credentialSubject"].(map[string]any)["id"] = "did:anchor:0.0.6666"
		},
		func(c map[string]any) { c["issuanceDate"] = "2001-01-01T00:00:00Z" },
		func(c map[string]any) { c["smuggled"] = true },
	}
	for i, mutate := range mutations {
		credential := f.issue(t, map[string]any{"diagnosis": "Flu"})
		mutate(credential)

		result, err := f.verifier.Verify(context.Background(), credential, f.issuer)
		require.NoError(t, err, "mutation %d", i)
		assert.False(t, result.Verified, "mutation %d should invalidate the signature", i)
	}
}

func TestVerifyRejectsMissingOrForeignProof(t *testing.T) {
	f := newFixture(t)

	t.Run("no proof at all", func(t *testing.T) {
		credential := f.issue(t, map[string]any{"diagnosis": "Flu"})
		delete(credential, "proof")

		_, err := f.verifier.Verify(context.Background(), credential, f.issuer)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeMissingProof))
	})

	t.Run("empty signature value", func(t *testing.T) {
		credential := f.issue(t, map[string]any{"diagnosis": "Flu"})
		credential["proof"].(map[string]any)["signatureValue"] = ""

		_, err := f.verifier.Verify(context.Background(), credential, f.issuer)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeMissingProof))
	})

	t.Run("verification method names another issuer", func(t *testing.T) {
		credential := f.issue(t, map[string]any{"diagnosis": "Flu"})

		_, err := f.verifier.Verify(context.Background(), credential, "did:anchor:0.0.123")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeMissingProof))
	})
}

func TestVerifyAgainstDifferentKeyFails(t *testing.T) {
	f := newFixture(t)
	credential := f.issue(t, map[string]any{"diagnosis": "Flu"})

	// The registry now serves a different key for the issuer.
	other, err := keys.Generate()
	require.NoError(t, err)
	record := f.resolver.records[f.issuer]
	record.PublicKey = keys.EncodePublic(other.Public)
	f.resolver.records[f.issuer] = record

	result, err := f.verifier.Verify(context.Background(), credential, f.issuer)
	require.NoError(t, err)
	assert.False(t, result.Verified)
}

func TestVerifySurfacesUnavailableContentSeparately(t *testing.T) {
	f := newFixture(t)
	credential := f.issue(t, map[string]any{"diagnosis": "Flu"})
	f.store.FailGets = true

	result, err := f.verifier.Verify(context.Background(), credential, f.issuer)
	require.NoError(t, err)
	assert.True(t, result.Verified, "content retrieval failure must not flip the verdict")
	assert.False(t, result.ContentAvailable)
	assert.Nil(t, result.Document)
}

func TestVerifyPropagatesResolutionFailure(t *testing.T) {
	f := newFixture(t)
	credential := f.issue(t, map[string]any{"diagnosis": "Flu"})

	// Sign method pinned to an issuer the registry cannot resolve.
	credential["proof"].(map[string]any)["verificationMethod"] = "did:anchor:0.0.404#key-1"

	_, err := f.verifier.Verify(context.Background(), credential, "did:anchor:0.0.404")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeResolutionFailed))
}
