package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"credanchor/internal/domain"
	"credanchor/internal/issuer"
	"credanchor/internal/platform/metrics"
	"credanchor/internal/platform/middleware"
	"credanchor/internal/transport/http/shared"
	"credanchor/internal/verifier"
	dErrors "credanchor/pkg/domain-errors"
)

// IssueService runs the issuance pipeline.
type IssueService interface {
	Issue(ctx context.Context, req issuer.Request) (domain.Credential, error)
}

// VerifyService checks a credential against an expected issuer.
type VerifyService interface {
	Verify(ctx context.Context, credential map[string]any, expectedIssuerDID string) (verifier.Result, error)
}

// DefaultIssuer is the service-level signing identity used when a request
// does not carry its own issuer fields.
type DefaultIssuer struct {
	DID        string
	PrivateKey string
}

// VCHandler serves credential issuance and verification.
type VCHandler struct {
	issuer        IssueService
	verifier      VerifyService
	defaultIssuer DefaultIssuer
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

func NewVCHandler(issue IssueService, verify VerifyService, defaultIssuer DefaultIssuer, logger *slog.Logger, m *metrics.Metrics) *VCHandler {
	return &VCHandler{
		issuer:        issue,
		verifier:      verify,
		defaultIssuer: defaultIssuer,
		logger:        logger,
		metrics:       m,
	}
}

// Register registers the VC routes with the chi router. The source contract
// for /verify-vc is a body-carrying GET; POST is accepted too for clients
// that refuse to send GET bodies.
func (h *VCHandler) Register(r chi.Router) {
	r.Post("/issue-medical-vc", h.handleIssue)
	r.Get("/verify-vc", h.handleVerify)
	r.Post("/verify-vc", h.handleVerify)
}

type issueRequest struct {
	PatientDID       string         `json:"patientDID"`
	Document         map[string]any `json:"document"`
	IssuerDID        string         `json:"issuerDID"`
	IssuerPrivateKey string         `json:"issuerPrivateKey"`
}

type issueResponse struct {
	SignedVC   domain.Credential `json:"signedVC"`
	CID        string            `json:"cid"`
	PatientDID string            `json:"patientDID"`
	Message    string            `json:"message"`
}

func (h *VCHandler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	// Reject incomplete requests before the pipeline makes any network call.
	if req.PatientDID == "" || len(req.Document) == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "patientDID and document are required"))
		return
	}

	issuerDID, issuerKey := req.IssuerDID, req.IssuerPrivateKey
	if issuerDID == "" {
		issuerDID, issuerKey = h.defaultIssuer.DID, h.defaultIssuer.PrivateKey
	}

	credential, err := h.issuer.Issue(ctx, issuer.Request{
		SubjectDID:       req.PatientDID,
		Document:         req.Document,
		IssuerDID:        issuerDID,
		IssuerPrivateKey: issuerKey,
	})
	if err != nil {
		h.metrics.IssueFailures.WithLabelValues(string(dErrors.CodeOf(err))).Inc()
		h.logger.ErrorContext(ctx, "credential issuance failed",
			"request_id", requestID,
			"patient_did", req.PatientDID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	h.metrics.CredentialsIssued.Inc()
	cid, _ := credential.Subject.Payload[domain.PayloadKeyContentReference].(string)
	shared.WriteJSON(w, http.StatusOK, issueResponse{
		SignedVC:   credential,
		CID:        cid,
		PatientDID: req.PatientDID,
		Message:    "credential issued and anchored",
	})
}

type verifyRequest struct {
	SignedVC  map[string]any `json:"signedVC"`
	IssuerDID string         `json:"issuerDID"`
}

type verifyResponse struct {
	Verified         bool           `json:"verified"`
	VC               map[string]any `json:"vc"`
	Document         map[string]any `json:"document,omitempty"`
	ContentAvailable bool           `json:"contentAvailable"`
}

func (h *VCHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.SignedVC) == 0 || req.IssuerDID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "signedVC and issuerDID are required"))
		return
	}

	result, err := h.verifier.Verify(ctx, req.SignedVC, req.IssuerDID)
	if err != nil {
		h.metrics.Verifications.WithLabelValues("error").Inc()
		h.logger.WarnContext(ctx, "credential verification errored",
			"request_id", requestID,
			"issuer_did", req.IssuerDID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	if !result.Verified {
		h.metrics.Verifications.WithLabelValues("rejected").Inc()
		shared.WriteError(w, dErrors.New(dErrors.CodeVerificationFailed, "credential signature did not verify"))
		return
	}

	h.metrics.Verifications.WithLabelValues("verified").Inc()
	shared.WriteJSON(w, http.StatusOK, verifyResponse{
		Verified:         true,
		VC:               result.Credential,
		Document:         result.Document,
		ContentAvailable: result.ContentAvailable,
	})
}
