package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"credanchor/internal/domain"
	"credanchor/internal/platform/metrics"
	"credanchor/internal/platform/middleware"
	"credanchor/internal/transport/http/shared"
	dErrors "credanchor/pkg/domain-errors"
)

// IdentityService is the slice of the identity registry the DID routes need.
type IdentityService interface {
	Create(ctx context.Context) (domain.Identity, error)
	Resolve(ctx context.Context, did string) (domain.IdentityRecord, error)
}

// DIDHandler serves identity creation and resolution.
type DIDHandler struct {
	identity IdentityService
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewDIDHandler(identity IdentityService, logger *slog.Logger, m *metrics.Metrics) *DIDHandler {
	return &DIDHandler{identity: identity, logger: logger, metrics: m}
}

// Register registers the DID routes with the chi router.
func (h *DIDHandler) Register(r chi.Router) {
	r.Post("/create-did", h.handleCreateDID)
	r.Get("/resolve-did/{did}", h.handleResolveDID)
}

func (h *DIDHandler) handleCreateDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := h.identity.Create(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "identity creation failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	h.metrics.DIDsCreated.Inc()
	shared.WriteJSON(w, http.StatusOK, identity)
}

func (h *DIDHandler) handleResolveDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	did := chi.URLParam(r, "did")
	if unescaped, err := url.PathUnescape(did); err == nil {
		did = unescaped
	}
	if did == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "did path parameter is required"))
		return
	}

	record, err := h.identity.Resolve(ctx, did)
	if err != nil {
		h.logger.WarnContext(ctx, "DID resolution failed",
			"request_id", middleware.GetRequestID(ctx),
			"did", did,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, record)
}
