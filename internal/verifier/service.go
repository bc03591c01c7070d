// Package verifier checks credential proofs against the issuer's published
// key and optionally re-fetches the referenced document for the caller.
package verifier

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"credanchor/internal/contentstore"
	"credanchor/internal/domain"
	"credanchor/internal/keys"
	"credanchor/pkg/canonical"
	dErrors "credanchor/pkg/domain-errors"
)

// Resolver is the slice of the identity registry the verifier needs.
type Resolver interface {
	Resolve(ctx context.Context, did string) (domain.IdentityRecord, error)
}

// Result reports the verification outcome. ContentAvailable is independent
// of Verified: an unreachable content store does not invalidate a good
// signature, it only means the document could not be returned.
type Result struct {
	Verified         bool
	Credential       map[string]any
	Document         map[string]any
	ContentAvailable bool
}

// Service verifies credentials. It never takes the public key from the
// credential itself; the key always comes from a completed resolution.
type Service struct {
	resolver Resolver
	store    contentstore.Store
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewService(resolver Resolver, store contentstore.Store, logger *slog.Logger) *Service {
	return &Service{
		resolver: resolver,
		store:    store,
		logger:   logger,
		tracer:   otel.Tracer("credanchor/verifier"),
	}
}

// Verify operates on the untyped credential form so any tampered field,
// whether this service knows its name or not, changes the recomputed
// fingerprint. A signature mismatch is a negative Result, not an error;
// structural problems (missing proof, unresolvable issuer) are errors.
func (s *Service) Verify(ctx context.Context, credential map[string]any, expectedIssuerDID string) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "verifier.Verify")
	defer span.End()
	span.SetAttributes(attribute.String("issuer.did", expectedIssuerDID))

	proof, err := extractProof(credential, expectedIssuerDID)
	if err != nil {
		return Result{}, err
	}

	// Recompute the fingerprint over everything except the proof, exactly as
	// issuance did before signing.
	payload := make(map[string]any, len(credential))
	for k, v := range credential {
		if k == "proof" {
			continue
		}
		payload[k] = v
	}
	digest, _, err := canonical.SHA256(payload)
	if err != nil {
		return Result{}, dErrors.Wrap(dErrors.CodeInternal, "credential fingerprint failed", err)
	}

	// Resolution must complete before the signature check; the credential
	// only references the key, it never carries it.
	record, err := s.resolver.Resolve(ctx, expectedIssuerDID)
	if err != nil {
		return Result{}, err
	}
	publicKey, err := keys.DecodePublic(record.PublicKey)
	if err != nil {
		return Result{}, dErrors.Wrap(dErrors.CodeResolutionFailed, "resolved public key is not usable", err)
	}

	result := Result{
		Credential: credential,
		Verified:   keys.VerifyDigest(publicKey, digest, proof.SignatureValue),
	}
	span.SetAttributes(attribute.Bool("credential.verified", result.Verified))
	if !result.Verified {
		s.logger.WarnContext(ctx, "credential signature did not verify",
			"issuer_did", expectedIssuerDID,
		)
		return result, nil
	}

	// The content fetch is a courtesy for the caller; its failure is
	// surfaced, never folded into the verification verdict.
	if reference := embeddedReference(credential); reference != "" {
		document, err := s.retrieve(ctx, reference)
		if err != nil {
			s.logger.WarnContext(ctx, "referenced content unavailable",
				"content_reference", reference,
				"error", err,
			)
			return result, nil
		}
		result.Document = document
		result.ContentAvailable = true
	}
	return result, nil
}

func (s *Service) retrieve(ctx context.Context, reference string) (map[string]any, error) {
	data, err := s.store.Get(ctx, reference)
	if err != nil {
		return nil, err
	}
	var document map[string]any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, err
	}
	return document, nil
}

func extractProof(credential map[string]any, expectedIssuerDID string) (domain.Proof, error) {
	raw, ok := credential["proof"].(map[string]any)
	if !ok {
		return domain.Proof{}, dErrors.New(dErrors.CodeMissingProof, "credential has no proof")
	}
	signature, _ := raw["signatureValue"].(string)
	if signature == "" {
		return domain.Proof{}, dErrors.New(dErrors.CodeMissingProof, "proof has no signatureValue")
	}
	method, _ := raw["verificationMethod"].(string)
	if method != domain.KeyID(expectedIssuerDID) {
		return domain.Proof{}, dErrors.New(dErrors.CodeMissingProof, "proof verification method does not name the expected issuer key")
	}
	proofType, _ := raw["type"].(string)
	created, _ := raw["created"].(string)
	purpose, _ := raw["proofPurpose"].(string)
	return domain.Proof{
		Type:               proofType,
		Created:            created,
		ProofPurpose:       purpose,
		VerificationMethod: method,
		SignatureValue:     signature,
	}, nil
}

func embeddedReference(credential map[string]any) string {
	subject, ok := credential["credentialSubject"].(map[string]any)
	if !ok {
		return ""
	}
	payload, ok := subject["payload"].(map[string]any)
	if !ok {
		return ""
	}
	reference, _ := payload[domain.PayloadKeyContentReference].(string)
	return reference
}
