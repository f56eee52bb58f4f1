package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vantage-erp/vantage-erp/internal/orders"
)

var (
	// ErrNotPermitted indicates the acting role may not set the candidate status.
	ErrNotPermitted = errors.New("workflow: status not permitted for role")
	// ErrUnknownStatus indicates a candidate outside the closed status set.
	ErrUnknownStatus = errors.New("workflow: unknown status")
	// ErrNothingStaged indicates a confirm or reset with no staged candidate.
	ErrNothingStaged = errors.New("workflow: no status staged")
	// ErrSubmissionInFlight indicates the editor is mid-submission.
	ErrSubmissionInFlight = errors.New("workflow: submission in flight")
	// ErrMissingOrder indicates a contract violation: no order identifier.
	ErrMissingOrder = errors.New("workflow: missing order identifier")
)

// StatusUpdater submits a confirmed transition to the remote order service.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID int64, status orders.Status) (orders.Order, error)
}

// ChangeListener observes accepted transitions, e.g. to refresh order lists.
type ChangeListener func(orderID int64, status orders.Status)

// Outcome is the tagged result of a confirm: either the transition applied
// and Status carries the new current status, or it did not and Status
// carries the rolled-back pre-transition status with Reason set. The
// displayed status is never left showing an unconfirmed value.
type Outcome struct {
	Applied bool          `json:"applied"`
	Status  orders.Status `json:"status"`
	Reason  string        `json:"reason,omitempty"`
}

// EditorView is a read snapshot of one order's status editor.
type EditorView struct {
	OrderID    int64          `json:"order_id"`
	Current    orders.Status  `json:"current"`
	Staged     *orders.Status `json:"staged,omitempty"`
	Submitting bool           `json:"submitting"`
}

// editor holds the per-order staging state machine:
// idle -> staged -> submitting -> idle (new status on success, rollback on
// failure). One editor exists per order; its mutex serializes stage and
// confirm so a new selection cannot race an in-flight submission.
type editor struct {
	mu         sync.Mutex
	current    orders.Status
	staged     *orders.Status
	submitting bool
}

// Controller coordinates status editors across orders.
type Controller struct {
	mu       sync.Mutex
	editors  map[int64]*editor
	updater  StatusUpdater
	history  *HistoryService
	onChange ChangeListener
	logger   *slog.Logger
}

// NewController constructs the transition controller. history and onChange
// may be nil.
func NewController(updater StatusUpdater, history *HistoryService, onChange ChangeListener, logger *slog.Logger) *Controller {
	return &Controller{
		editors:  make(map[int64]*editor),
		updater:  updater,
		history:  history,
		onChange: onChange,
		logger:   logger,
	}
}

func (c *Controller) ensureEditor(orderID int64, current orders.Status) *editor {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ed, ok := c.editors[orderID]; ok {
		return ed
	}
	ed := &editor{current: current}
	c.editors[orderID] = ed
	return ed
}

func (c *Controller) lookupEditor(orderID int64) (*editor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ed, ok := c.editors[orderID]
	return ed, ok
}

func view(orderID int64, ed *editor) EditorView {
	return EditorView{
		OrderID:    orderID,
		Current:    ed.current,
		Staged:     ed.staged,
		Submitting: ed.submitting,
	}
}

// Stage selects a candidate status. Selecting the current status is a no-op
// reset; a candidate outside the role's permitted set is rejected without
// ever being staged. A staged candidate still requires an explicit Confirm.
func (c *Controller) Stage(orderID int64, role string, current, candidate orders.Status) (EditorView, error) {
	if orderID <= 0 {
		c.logger.Error("stage called without order identifier", slog.String("role", role))
		return EditorView{}, ErrMissingOrder
	}
	if !candidate.Valid() {
		return EditorView{}, fmt.Errorf("%w: %q", ErrUnknownStatus, candidate)
	}

	ed := c.ensureEditor(orderID, current)
	ed.mu.Lock()
	defer ed.mu.Unlock()

	if ed.submitting {
		return view(orderID, ed), ErrSubmissionInFlight
	}
	if candidate == ed.current {
		ed.staged = nil
		return view(orderID, ed), nil
	}
	if !PermittedStatuses(role).Contains(candidate) {
		ed.staged = nil
		c.logger.Warn("status selection rejected",
			slog.Int64("order_id", orderID),
			slog.String("role", role),
			slog.String("candidate", string(candidate)))
		return view(orderID, ed), ErrNotPermitted
	}

	staged := candidate
	ed.staged = &staged
	return view(orderID, ed), nil
}

// Confirm submits the staged candidate. Permission and order identity are
// re-validated first; a pre-check failure rolls back without contacting the
// server. On success the server's status (or the candidate when the response
// omits it) becomes current and listeners are notified; on failure the
// displayed status unconditionally rolls back to the pre-transition value.
func (c *Controller) Confirm(ctx context.Context, orderID int64, role string) (Outcome, error) {
	if orderID <= 0 {
		c.logger.Error("confirm called without order identifier", slog.String("role", role))
		return Outcome{}, ErrMissingOrder
	}

	ed, ok := c.lookupEditor(orderID)
	if !ok {
		return Outcome{}, ErrNothingStaged
	}

	ed.mu.Lock()
	if ed.submitting {
		ed.mu.Unlock()
		return Outcome{}, ErrSubmissionInFlight
	}
	if ed.staged == nil {
		current := ed.current
		ed.mu.Unlock()
		return Outcome{Applied: false, Status: current, Reason: "nothing staged"}, ErrNothingStaged
	}
	candidate := *ed.staged
	previous := ed.current

	if !PermittedStatuses(role).Contains(candidate) {
		ed.staged = nil
		ed.mu.Unlock()
		c.logger.Warn("confirm rejected, permission lost since staging",
			slog.Int64("order_id", orderID),
			slog.String("role", role),
			slog.String("candidate", string(candidate)))
		return Outcome{Applied: false, Status: previous, Reason: "not permitted"}, ErrNotPermitted
	}

	ed.submitting = true
	ed.mu.Unlock()

	order, err := c.updater.UpdateStatus(ctx, orderID, candidate)

	ed.mu.Lock()
	ed.submitting = false
	ed.staged = nil
	if err != nil {
		// current stays at the pre-transition value
		ed.mu.Unlock()
		c.logger.Error("status submission failed",
			slog.Int64("order_id", orderID),
			slog.String("candidate", string(candidate)),
			slog.Any("error", err))
		return Outcome{Applied: false, Status: previous, Reason: "submission failed"}, fmt.Errorf("confirm transition: %w", err)
	}

	accepted := order.Status
	if !accepted.Valid() {
		accepted = candidate
	}
	ed.current = accepted
	ed.mu.Unlock()

	if c.history != nil {
		c.history.Invalidate(ctx, orderID)
	}
	if c.onChange != nil {
		c.onChange(orderID, accepted)
	}
	return Outcome{Applied: true, Status: accepted}, nil
}

// Reset drops any staged candidate, returning the editor to its current
// status.
func (c *Controller) Reset(orderID int64) (EditorView, error) {
	ed, ok := c.lookupEditor(orderID)
	if !ok {
		return EditorView{}, ErrNothingStaged
	}
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.submitting {
		return view(orderID, ed), ErrSubmissionInFlight
	}
	ed.staged = nil
	return view(orderID, ed), nil
}

// View returns a snapshot of the order's editor, if one exists.
func (c *Controller) View(orderID int64) (EditorView, bool) {
	ed, ok := c.lookupEditor(orderID)
	if !ok {
		return EditorView{}, false
	}
	ed.mu.Lock()
	defer ed.mu.Unlock()
	return view(orderID, ed), true
}
