package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/geocode-proxy-service/internal/domain"
	"github.com/couchcryptid/geocode-proxy-service/internal/observability"
)

// IndexResolver maps a provider to its backend place-index identifier.
type IndexResolver interface {
	ResolveIndexID(ctx context.Context, provider domain.Provider) (string, error)
}

// Auditor publishes a record of each handled batch call. Implementations
// must not block the request path.
type Auditor interface {
	RecordCall(ctx context.Context, record domain.CallRecord)
}

// Handler is the external-function entry point: decode envelope, classify the
// caller identity, dispatch the batch, encode the result. One attempt per
// inbound call; retries are the warehouse's job.
type Handler struct {
	geocoder domain.Geocoder
	indexes  IndexResolver
	auditor  Auditor
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewHandler creates the batch-call handler. auditor may be nil.
func NewHandler(geocoder domain.Geocoder, indexes IndexResolver, auditor Auditor, metrics *observability.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		geocoder: geocoder,
		indexes:  indexes,
		auditor:  auditor,
		metrics:  metrics,
		logger:   logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	record := domain.CallRecord{HandledAt: start.UTC()}

	status, body := h.handle(r, &record)

	record.Status = status
	record.DurationMS = time.Since(start).Milliseconds()
	h.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	h.metrics.RequestsTotal.WithLabelValues(record.Operation, record.Provider, record.Outcome).Inc()
	if h.auditor != nil {
		h.auditor.RecordCall(r.Context(), record)
	}

	writeJSON(w, status, body)
}

// handle runs the four-outcome state machine and fills the audit record as
// facts about the call become known.
func (h *Handler) handle(r *http.Request, record *domain.CallRecord) (int, any) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		record.Outcome = "read_error"
		return http.StatusInternalServerError, errorResponse{Error: domain.PublicMessage(err)}
	}

	rows, err := decodeRequest(body)
	if err != nil {
		h.logger.Warn("invalid request body", "error", err)
		record.Outcome = "invalid_body"
		return http.StatusBadRequest, errorResponse{Error: domain.PublicMessage(err)}
	}
	record.Rows = len(rows)
	h.metrics.BatchRows.Observe(float64(len(rows)))

	functionName, err := callerIdentity(r.Header)
	if err != nil {
		h.logger.Warn("missing caller identity header")
		record.Outcome = "missing_identity"
		return http.StatusUnauthorized, errorResponse{Error: domain.PublicMessage(err)}
	}
	record.FunctionName = functionName

	op, err := domain.ClassifyOperation(functionName)
	if err != nil {
		h.logger.Error("unrecognized operation", "function_name", functionName)
		record.Outcome = "unrecognized_operation"
		return http.StatusInternalServerError, errorResponse{Error: domain.PublicMessage(err)}
	}
	record.Operation = op.String()

	provider, err := domain.ResolveProvider(functionName)
	if err != nil {
		h.logger.Error("unknown provider", "function_name", functionName)
		record.Outcome = "unknown_provider"
		return http.StatusInternalServerError, errorResponse{Error: domain.PublicMessage(err)}
	}
	record.Provider = string(provider)

	indexID, err := h.indexes.ResolveIndexID(r.Context(), provider)
	if err != nil {
		h.logger.Error("index resolution failed", "provider", provider, "error", err)
		record.Outcome = "index_unavailable"
		return http.StatusInternalServerError, errorResponse{Error: domain.PublicMessage(err)}
	}

	results, err := domain.ProcessBatch(r.Context(), op, rows, h.geocoder, indexID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBody) {
			h.logger.Warn("malformed rows", "function_name", functionName, "error", err)
			record.Outcome = "invalid_rows"
			return http.StatusBadRequest, errorResponse{Error: domain.PublicMessage(err)}
		}
		h.logger.Error("batch dispatch failed",
			"function_name", functionName,
			"operation", op.String(),
			"provider", provider,
			"rows", len(rows),
			"error", err,
		)
		record.Outcome = "dispatch_error"
		return http.StatusInternalServerError, errorResponse{Error: domain.PublicMessage(err)}
	}

	record.Outcome = "ok"
	return http.StatusOK, batchResponse{Data: results}
}
