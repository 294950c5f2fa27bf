package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/xe-erp/peppol-web/internal/platform/httpx"
	"github.com/xe-erp/peppol-web/internal/shared"
)

// QueueInspector is the part of *asynq.Inspector used by the handler.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// Enqueuer submits sync tasks; *Client implements it.
type Enqueuer interface {
	EnqueueSync(ctx context.Context, taskType, triggeredBy string) (*asynq.TaskInfo, error)
}

// Handler exposes queue health and manual sync triggers.
type Handler struct {
	inspector QueueInspector
	enqueuer  Enqueuer
	logger    *slog.Logger
}

// NewHandler constructs a Handler. Either collaborator may be nil, which
// disables the matching endpoint.
func NewHandler(inspector QueueInspector, enqueuer Enqueuer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{inspector: inspector, enqueuer: enqueuer, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Post("/{task}/run", h.run)
}

type queueHealth struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
	Failed    int    `json:"failed_today"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	body := queueHealth{Queue: QueueDefault}
	if h.inspector != nil {
		info, err := h.inspector.GetQueueInfo(QueueDefault)
		if err != nil {
			h.logger.Warn("jobs health", slog.Any("error", err))
			httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "")
			return
		}
		if info != nil {
			body = queueHealth{
				Queue:     info.Queue,
				Pending:   info.Pending,
				Active:    info.Active,
				Scheduled: info.Scheduled,
				Retry:     info.Retry,
				Archived:  info.Archived,
				Failed:    info.Failed,
			}
		}
	}
	httpx.JSON(w, http.StatusOK, body)
}

type runResponse struct {
	ID    string `json:"id"`
	Task  string `json:"task"`
	Queue string `json:"queue"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	taskType := chi.URLParam(r, "task")
	if !IsSyncTask(taskType) {
		httpx.RespondError(w, r, fmt.Errorf("%w: unknown task %s", httpx.ErrNotFound, taskType))
		return
	}
	if h.enqueuer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "")
		return
	}
	triggeredBy := "web"
	if login, ok := shared.SessionFromContext(r.Context()).BackendLogin(); ok {
		triggeredBy = "web:" + login.Login
	}
	info, err := h.enqueuer.EnqueueSync(r.Context(), taskType, triggeredBy)
	if err != nil {
		h.logger.Error("enqueue sync", slog.String("task", taskType), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "")
		return
	}
	h.logger.Info("sync enqueued", slog.String("task", taskType), slog.String("id", info.ID), slog.String("by", triggeredBy))
	httpx.JSON(w, http.StatusAccepted, runResponse{ID: info.ID, Task: info.Type, Queue: info.Queue})
}
