// Package issuer composes the issuance pipeline: store the document, anchor
// its fingerprint, build the credential payload, and sign it.
package issuer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"credanchor/internal/anchorlog"
	"credanchor/internal/contentstore"
	"credanchor/internal/domain"
	"credanchor/internal/keys"
	"credanchor/pkg/canonical"
	dErrors "credanchor/pkg/domain-errors"
)

// Request carries everything one issuance needs. The issuer identity is a
// per-call parameter, not service state, so one deployment can sign for many
// issuers.
type Request struct {
	SubjectDID       string
	Document         map[string]any
	IssuerDID        string
	IssuerPrivateKey string
}

// Service owns the issue pipeline. Store and log are injected, long-lived,
// read-mostly collaborators.
type Service struct {
	store  contentstore.Store
	log    anchorlog.Log
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

func NewService(store contentstore.Store, log anchorlog.Log, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		log:    log,
		logger: logger,
		tracer: otel.Tracer("credanchor/issuer"),
		now:    time.Now,
	}
}

// Issue runs the pipeline strictly in sequence: store, fingerprint, anchor,
// build, sign. The sequence is not transactionally atomic — a failure after
// anchoring leaves the stored document and anchor record in place, and the
// caller sees only the error. Validation happens before any network call.
func (s *Service) Issue(ctx context.Context, req Request) (domain.Credential, error) {
	ctx, span := s.tracer.Start(ctx, "issuer.Issue")
	defer span.End()

	if req.SubjectDID == "" {
		return domain.Credential{}, dErrors.New(dErrors.CodeBadRequest, "subject DID is required")
	}
	if len(req.Document) == 0 {
		return domain.Credential{}, dErrors.New(dErrors.CodeBadRequest, "document is required")
	}
	if req.IssuerDID == "" {
		return domain.Credential{}, dErrors.New(dErrors.CodeBadRequest, "issuer DID is required")
	}
	if _, err := domain.ParseDID(req.IssuerDID); err != nil {
		return domain.Credential{}, dErrors.Wrap(dErrors.CodeInvalidDID, "issuer DID does not match the did:anchor scheme", err)
	}
	privateKey, err := keys.DecodePrivate(req.IssuerPrivateKey)
	if err != nil {
		return domain.Credential{}, dErrors.Wrap(dErrors.CodeBadRequest, "issuer private key is not usable", err)
	}

	span.SetAttributes(
		attribute.String("subject.did", req.SubjectDID),
		attribute.String("issuer.did", req.IssuerDID),
	)

	// Step 1: the document goes into the content store as canonical bytes so
	// identical documents always share a reference.
	docBytes, err := canonical.Marshal(req.Document)
	if err != nil {
		return domain.Credential{}, dErrors.Wrap(dErrors.CodeInternal, "document serialization failed", err)
	}
	reference, err := s.store.Put(ctx, docBytes)
	if err != nil {
		span.RecordError(err)
		return domain.Credential{}, dErrors.Wrap(dErrors.CodeStorageFailed, "content store rejected the document", err)
	}

	// Step 2: fingerprint over the same canonical bytes.
	_, fingerprint, err := canonical.SHA256(req.Document)
	if err != nil {
		return domain.Credential{}, dErrors.Wrap(dErrors.CodeInternal, "document fingerprint failed", err)
	}

	// Step 3: anchor before anything is signed. A non-success receipt is a
	// hard stop; no credential exists for unanchored content.
	issuedAt := s.now().UTC()
	receipt, err := s.log.Append(ctx, domain.AnchorRecord{
		ContentReference:    reference,
		DocumentFingerprint: fingerprint,
		SubjectDID:          req.SubjectDID,
		RecordType:          domain.RecordTypeDocumentAnchor,
		Timestamp:           issuedAt,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Credential{}, dErrors.Wrap(dErrors.CodeAnchorFailed, "anchor log append failed", err)
	}
	if !receipt.OK() {
		s.logger.ErrorContext(ctx, "anchor receipt not success",
			"status", receipt.Status,
			"log", receipt.Log,
			"content_reference", reference,
		)
		return domain.Credential{}, dErrors.New(dErrors.CodeAnchorFailed, "anchor receipt status was not success")
	}

	// Steps 4-5: build the payload and fingerprint it pre-proof.
	payload := make(map[string]any, len(req.Document)+2)
	for k, v := range req.Document {
		payload[k] = v
	}
	payload[domain.PayloadKeyContentReference] = reference
	payload[domain.PayloadKeyFingerprint] = fingerprint

	credential := domain.Credential{
		Context:      []string{domain.CredentialContext},
		ID:           "urn:uuid:" + uuid.NewString(),
		Type:         []string{domain.CredentialType},
		Issuer:       req.IssuerDID,
		IssuanceDate: issuedAt.Format(time.RFC3339),
		Subject: domain.Subject{
			ID:      req.SubjectDID,
			Payload: payload,
		},
	}
	digest, _, err := canonical.SHA256(credential)
	if err != nil {
		return domain.Credential{}, dErrors.Wrap(dErrors.CodeInternal, "credential fingerprint failed", err)
	}

	// Steps 6-7: sign the fingerprint and attach the proof, naming the exact
	// published key the signature binds to.
	credential.Proof = &domain.Proof{
		Type:               domain.ProofType,
		Created:            credential.IssuanceDate,
		ProofPurpose:       domain.ProofPurpose,
		VerificationMethod: domain.KeyID(req.IssuerDID),
		SignatureValue:     keys.SignDigest(privateKey, digest),
	}

	s.logger.InfoContext(ctx, "credential issued",
		"credential_id", credential.ID,
		"subject_did", req.SubjectDID,
		"issuer_did", req.IssuerDID,
		"content_reference", reference,
		"anchor_sequence", receipt.Sequence,
	)
	return credential, nil
}
