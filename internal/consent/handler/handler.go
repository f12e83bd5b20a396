package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"consentd/internal/consent/models"
	respond "consentd/internal/transport/http/json"
	"consentd/internal/transport/http/shared"
	dErrors "consentd/pkg/domain-errors"
	"consentd/pkg/requestcontext"
	"consentd/pkg/validation"
)

// Service defines the interface for consent operations.
type Service interface {
	Create(ctx context.Context, caller models.Caller, candidate models.Candidate, meta models.RequestMeta) (*models.Record, error)
	ListMine(ctx context.Context, caller models.Caller) ([]*models.Record, error)
	ListAll(ctx context.Context, caller models.Caller, filter *models.Filter) ([]*models.Record, error)
	Get(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Record, error)
	Revoke(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Record, error)
}

// Handler is the thin HTTP layer over the consent service. It decodes and
// validates request shapes, builds the caller from request context, and maps
// domain errors to HTTP; all business rules live in the service.
type Handler struct {
	logger  *slog.Logger
	consent Service
}

func New(consent Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		consent: consent,
	}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/consents", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/me", h.handleListMine)
		r.Get("/all", h.handleListAll)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/revoke", h.handleRevoke)
	})
}

// callerFrom builds the caller identity from values the auth middleware left
// on the context. The zero value is an anonymous guest.
func callerFrom(ctx context.Context) models.Caller {
	return models.Caller{
		Subject: requestcontext.Subject(ctx),
		Admin:   requestcontext.Admin(ctx),
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := callerFrom(ctx)

	var createReq CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create consent request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validation.Validate(&createReq); err != nil {
		h.logger.WarnContext(ctx, "invalid create consent request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	meta := models.RequestMeta{
		IPAddress:   requestcontext.ClientIP(ctx),
		ClientAgent: requestcontext.UserAgent(ctx),
	}

	record, err := h.consent.Create(ctx, caller, createReq.ToCandidate(), meta)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to record consent",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, toConsentResponse(record))
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.consent.ListMine(ctx, callerFrom(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toListResponse(records))
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		h.logger.WarnContext(ctx, "invalid consent list filter",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	records, err := h.consent.ListAll(ctx, callerFrom(ctx), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toListResponse(records))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.consent.Get(ctx, callerFrom(ctx), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toConsentResponse(record))
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := parseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.consent.Revoke(ctx, callerFrom(ctx), id)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to revoke consent",
			"request_id", requestID,
			"consent_id", id,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, RevokeResponse{
		Consent: toConsentResponse(record),
		Message: "consent revoked",
	})
}

// parseRecordID maps a malformed id to not found rather than bad request, so
// probing with garbage ids is indistinguishable from probing with unknown ones.
func parseRecordID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeNotFound, "consent record not found")
	}
	return id, nil
}
