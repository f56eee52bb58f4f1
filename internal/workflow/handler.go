package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vantage-erp/vantage-erp/internal/orders"
	"github.com/vantage-erp/vantage-erp/internal/platform/httpx"
)

// Handler exposes the status workflow over HTTP.
type Handler struct {
	logger     *slog.Logger
	controller *Controller
	history    *HistoryService
	validate   *validator.Validate
}

// NewHandler constructs the workflow handler.
func NewHandler(logger *slog.Logger, controller *Controller, history *HistoryService) *Handler {
	return &Handler{
		logger:     logger,
		controller: controller,
		history:    history,
		validate:   validator.New(),
	}
}

// MountRoutes attaches workflow routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/{orderID}", func(r chi.Router) {
		r.Get("/statuses", h.permittedStatuses)
		r.Get("/status", h.editorState)
		r.Post("/status/stage", h.stage)
		r.Post("/status/confirm", h.confirm)
		r.Post("/status/reset", h.reset)
		r.Get("/history", h.historyLog)
	})
}

func (h *Handler) orderID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid order id", httpx.ErrValidation)
	}
	return id, nil
}

func actingRole(r *http.Request) string {
	return r.Header.Get(RoleHeader)
}

func (h *Handler) permittedStatuses(w http.ResponseWriter, r *http.Request) {
	role := actingRole(r)
	httpx.JSON(w, http.StatusOK, permittedResponse{
		Role:     role,
		Statuses: PermittedStatuses(role).List(),
	})
}

func (h *Handler) editorState(w http.ResponseWriter, r *http.Request) {
	id, err := h.orderID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	state, ok := h.controller.View(id)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: no editor for order %d", httpx.ErrNotFound, id))
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) stage(w http.ResponseWriter, r *http.Request) {
	id, err := h.orderID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req stageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	if !req.CurrentStatus.Valid() {
		httpx.RespondError(w, fmt.Errorf("%w: unknown current status %q", httpx.ErrValidation, req.CurrentStatus))
		return
	}

	state, err := h.controller.Stage(id, actingRole(r), req.CurrentStatus, req.Status)
	if err != nil {
		h.respondWorkflowError(w, err, state)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	id, err := h.orderID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	outcome, err := h.controller.Confirm(r.Context(), id, actingRole(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotPermitted):
			httpx.Problem(w, http.StatusForbidden, "Forbidden",
				fmt.Sprintf("transition denied; status remains %q", outcome.Status))
		case errors.Is(err, ErrNothingStaged):
			httpx.RespondError(w, fmt.Errorf("%w: nothing staged", httpx.ErrValidation))
		case errors.Is(err, ErrSubmissionInFlight):
			httpx.RespondError(w, fmt.Errorf("%w: submission in flight", httpx.ErrConflict))
		case errors.Is(err, ErrMissingOrder):
			httpx.RespondError(w, fmt.Errorf("%w: missing order id", httpx.ErrValidation))
		default:
			httpx.Problem(w, http.StatusBadGateway, "Upstream Failure",
				fmt.Sprintf("submission failed; status rolled back to %q", outcome.Status))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, outcome)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	id, err := h.orderID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	state, err := h.controller.Reset(id)
	if err != nil {
		h.respondWorkflowError(w, err, state)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) historyLog(w http.ResponseWriter, r *http.Request) {
	id, err := h.orderID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	changes, err := h.history.History(r.Context(), id)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			httpx.RespondError(w, fmt.Errorf("%w: order %d", httpx.ErrNotFound, id))
			return
		}
		h.logger.Error("history fetch failed", slog.Int64("order_id", id), slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: history unavailable", httpx.ErrUpstream))
		return
	}
	httpx.JSON(w, http.StatusOK, newHistoryEntries(changes))
}

func (h *Handler) respondWorkflowError(w http.ResponseWriter, err error, state EditorView) {
	switch {
	case errors.Is(err, ErrNotPermitted):
		httpx.Problem(w, http.StatusForbidden, "Forbidden",
			fmt.Sprintf("status not permitted for role; editor reset to %q", state.Current))
	case errors.Is(err, ErrUnknownStatus):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
	case errors.Is(err, ErrSubmissionInFlight):
		httpx.RespondError(w, fmt.Errorf("%w: submission in flight", httpx.ErrConflict))
	case errors.Is(err, ErrNothingStaged):
		httpx.RespondError(w, fmt.Errorf("%w: no editor state", httpx.ErrNotFound))
	case errors.Is(err, ErrMissingOrder):
		httpx.RespondError(w, fmt.Errorf("%w: missing order id", httpx.ErrValidation))
	default:
		httpx.RespondError(w, err)
	}
}
