// Package intake implements the submission gateway for the full and lite
// project request forms.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/good-yellow-bee/anfrage/internal/metrics"
	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/ratelimit"
	"github.com/good-yellow-bee/anfrage/internal/relay"
	"github.com/good-yellow-bee/anfrage/internal/storage"
	"github.com/good-yellow-bee/anfrage/internal/validation"
)

// Response messages.
const (
	MsgSuccess        = "Erfolg"
	MsgRateLimited    = "Zu viele Anfragen. Versuche es gleich noch einmal."
	MsgInvalid        = "Ungültige Daten"
	MsgRejected       = "Anfrage konnte nicht verarbeitet werden."
	MsgStoreFailed    = "Fehler beim Speichern."
	MsgStoreFailedLit = "Fehler beim Speichern der Anfrage."
	MsgUnknown        = "Unbekannter Fehler. Versuche es später erneut."
)

const (
	maxBodyBytes         = 64 << 10
	defaultNotifyTimeout = 10 * time.Second
)

// Notifier forwards a stored request to the notification relay.
type Notifier interface {
	Notify(ctx context.Context, summary *models.Summary) error
}

// Mirror receives a copy of every stored request for the dashboard.
type Mirror interface {
	AppendRequest(req models.LocalRequest) error
}

// Config holds gateway dependencies that have defaults.
type Config struct {
	FullLimiter   ratelimit.Limiter // default: in-memory, 5 per minute
	LiteLimiter   ratelimit.Limiter // default: in-memory, 5 per minute
	NotifyTimeout time.Duration     // default: 10s
	Backend       string            // storage driver name for metrics
}

// Handler serves the submission endpoints.
type Handler struct {
	requests storage.RequestRepository
	mirror   Mirror
	notifier Notifier
	config   Config
}

type messageResponse struct {
	Message string             `json:"message"`
	Issues  *validation.Issues `json:"issues,omitempty"`
}

func jsonMessage(w http.ResponseWriter, status int, message string) {
	jsonWrite(w, status, messageResponse{Message: message})
}

func jsonWrite(w http.ResponseWriter, status int, body messageResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// NewHandler creates a gateway handler. mirror and notifier may be nil.
func NewHandler(requests storage.RequestRepository, mirror Mirror, notifier Notifier, config Config) *Handler {
	if config.FullLimiter == nil {
		config.FullLimiter = ratelimit.NewMemory(ratelimit.DefaultLimit, ratelimit.DefaultWindow)
	}
	if config.LiteLimiter == nil {
		config.LiteLimiter = ratelimit.NewMemory(ratelimit.DefaultLimit, ratelimit.DefaultWindow)
	}
	if config.NotifyTimeout <= 0 {
		config.NotifyTimeout = defaultNotifyTimeout
	}
	if config.Backend == "" {
		config.Backend = storage.DriverSQLite
	}
	return &Handler{
		requests: requests,
		mirror:   mirror,
		notifier: notifier,
		config:   config,
	}
}

// submission is the part of both contracts the pipeline needs.
type submission interface {
	Honeypot() string
	ToProjectRequest() *models.ProjectRequest
}

// pipeline describes one endpoint.
type pipeline struct {
	flow        models.Flow
	limiter     ratelimit.Limiter
	storeFailed string
	newPayload  func() submission
	check       func(submission) *validation.Issues
}

// SubmitFull handles POST /api/project-request.
func (h *Handler) SubmitFull(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, pipeline{
		flow:        models.FlowFull,
		limiter:     h.config.FullLimiter,
		storeFailed: MsgStoreFailed,
		newPayload:  func() submission { return &models.FullSubmission{} },
		check: func(s submission) *validation.Issues {
			p := s.(*models.FullSubmission)
			normalizeFull(p)
			return validation.Full(p)
		},
	})
}

// SubmitLite handles POST /api/project-request-lite.
func (h *Handler) SubmitLite(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, pipeline{
		flow:        models.FlowLite,
		limiter:     h.config.LiteLimiter,
		storeFailed: MsgStoreFailedLit,
		newPayload:  func() submission { return &models.LiteSubmission{} },
		check: func(s submission) *validation.Issues {
			p := s.(*models.LiteSubmission)
			normalizeLite(p)
			return validation.Lite(p)
		},
	})
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, p pipeline) {
	flow := string(p.flow)

	key := ratelimit.ClientKey(r)
	allowed, err := p.limiter.Allow(r.Context(), key)
	if err != nil {
		// Fail open when the limiter backend is unavailable.
		log.Printf("intake: rate limiter: %v", err)
		allowed = true
	}
	if !allowed {
		metrics.RateLimitRejections.WithLabelValues(flow).Inc()
		metrics.SubmissionsTotal.WithLabelValues(flow, "rate_limited").Inc()
		jsonMessage(w, http.StatusTooManyRequests, MsgRateLimited)
		return
	}

	payload := p.newPayload()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(payload); err != nil {
		if isClientDecodeError(err) {
			metrics.SubmissionsTotal.WithLabelValues(flow, "bad_request").Inc()
			jsonMessage(w, http.StatusBadRequest, MsgInvalid)
			return
		}
		log.Printf("intake: read %s body: %v", flow, err)
		metrics.SubmissionsTotal.WithLabelValues(flow, "bad_request").Inc()
		jsonMessage(w, http.StatusInternalServerError, MsgUnknown)
		return
	}

	issues := p.check(payload)

	// Honeypot hits get the generic message, never the issue list.
	if payload.Honeypot() != "" {
		metrics.SubmissionsTotal.WithLabelValues(flow, "honeypot").Inc()
		jsonMessage(w, http.StatusBadRequest, MsgRejected)
		return
	}

	if !issues.Empty() {
		metrics.SubmissionsTotal.WithLabelValues(flow, "invalid").Inc()
		jsonWrite(w, http.StatusBadRequest, messageResponse{Message: MsgInvalid, Issues: issues})
		return
	}

	req := payload.ToProjectRequest()
	start := time.Now()
	err = h.requests.Create(r.Context(), req)
	metrics.StorageQueryDuration.WithLabelValues("insert", h.config.Backend).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StorageErrors.WithLabelValues("insert", h.config.Backend).Inc()
		metrics.SubmissionsTotal.WithLabelValues(flow, "store_error").Inc()
		log.Printf("intake: store %s request: %v", flow, err)
		jsonMessage(w, http.StatusInternalServerError, p.storeFailed)
		return
	}
	metrics.SubmissionsTotal.WithLabelValues(flow, "stored").Inc()

	if h.mirror != nil {
		if err := h.mirror.AppendRequest(models.LocalRequestFrom(req)); err != nil {
			log.Printf("intake: mirror request %s: %v", req.ID, err)
		}
	}

	h.notify(r.Context(), req)

	jsonMessage(w, http.StatusOK, MsgSuccess)
}

// notify calls the relay and waits for it so failures land in the log. The
// outcome never changes the response.
func (h *Handler) notify(parent context.Context, req *models.ProjectRequest) {
	if h.notifier == nil {
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), h.config.NotifyTimeout)
	defer cancel()

	err := h.notifier.Notify(ctx, req.Summary())
	switch {
	case errors.Is(err, relay.ErrSkipped):
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		log.Printf("intake: notification skipped: NOTIFY_FUNCTION_URL or NOTIFY_SERVICE_KEY missing")
	case err != nil:
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		log.Printf("intake: notify request %s: %v", req.ID, err)
	default:
		metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	}
}

func isClientDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.As(err, &sizeErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
