package workflow

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/orders"
)

type fakeUpdater struct {
	calls    int
	lastID   int64
	lastStat orders.Status
	resp     orders.Order
	err      error
}

func (f *fakeUpdater) UpdateStatus(_ context.Context, orderID int64, status orders.Status) (orders.Order, error) {
	f.calls++
	f.lastID = orderID
	f.lastStat = status
	if f.err != nil {
		return orders.Order{}, f.err
	}
	return f.resp, nil
}

func newTestController(updater *fakeUpdater, onChange ChangeListener) *Controller {
	return NewController(updater, nil, onChange, slog.Default())
}

// blockingUpdater parks UpdateStatus until released, to observe the editor
// mid-submission.
type blockingUpdater struct {
	started chan struct{}
	release chan struct{}
	resp    orders.Order
}

func (b *blockingUpdater) UpdateStatus(_ context.Context, _ int64, _ orders.Status) (orders.Order, error) {
	close(b.started)
	<-b.release
	return b.resp, nil
}

func TestStagePermissionGate(t *testing.T) {
	updater := &fakeUpdater{}
	c := newTestController(updater, nil)

	// sales may not set packed; the candidate is never staged
	state, err := c.Stage(1, "sales", orders.StatusConfirmed, orders.StatusPacked)
	require.ErrorIs(t, err, ErrNotPermitted)
	require.Equal(t, orders.StatusConfirmed, state.Current)
	require.Nil(t, state.Staged)
	require.Zero(t, updater.calls)
}

func TestStageSameStatusIsReset(t *testing.T) {
	c := newTestController(&fakeUpdater{}, nil)

	_, err := c.Stage(1, "warehouse", orders.StatusConfirmed, orders.StatusPacked)
	require.NoError(t, err)

	state, err := c.Stage(1, "warehouse", orders.StatusConfirmed, orders.StatusConfirmed)
	require.NoError(t, err)
	require.Nil(t, state.Staged)
}

func TestStageUnknownStatus(t *testing.T) {
	c := newTestController(&fakeUpdater{}, nil)
	_, err := c.Stage(1, "admin", orders.StatusConfirmed, orders.Status("teleported"))
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestStageMissingOrderID(t *testing.T) {
	c := newTestController(&fakeUpdater{}, nil)
	_, err := c.Stage(0, "admin", orders.StatusConfirmed, orders.StatusPacked)
	require.ErrorIs(t, err, ErrMissingOrder)
}

func TestConfirmSuccessfulTransition(t *testing.T) {
	updater := &fakeUpdater{resp: orders.Order{ID: 9, Status: orders.StatusPacked}}

	var notifiedID int64
	var notifiedStatus orders.Status
	c := newTestController(updater, func(orderID int64, status orders.Status) {
		notifiedID = orderID
		notifiedStatus = status
	})

	_, err := c.Stage(9, "warehouse", orders.StatusConfirmed, orders.StatusPacked)
	require.NoError(t, err)

	outcome, err := c.Confirm(context.Background(), 9, "warehouse")
	require.NoError(t, err)
	require.True(t, outcome.Applied)
	require.Equal(t, orders.StatusPacked, outcome.Status)

	require.Equal(t, 1, updater.calls)
	require.Equal(t, int64(9), updater.lastID)
	require.Equal(t, orders.StatusPacked, updater.lastStat)

	require.Equal(t, int64(9), notifiedID)
	require.Equal(t, orders.StatusPacked, notifiedStatus)

	state, ok := c.View(9)
	require.True(t, ok)
	require.Equal(t, orders.StatusPacked, state.Current)
	require.Nil(t, state.Staged)
}

func TestConfirmUsesCandidateWhenResponseOmitsStatus(t *testing.T) {
	updater := &fakeUpdater{resp: orders.Order{ID: 9}}
	c := newTestController(updater, nil)

	_, err := c.Stage(9, "warehouse", orders.StatusConfirmed, orders.StatusShipped)
	require.NoError(t, err)

	outcome, err := c.Confirm(context.Background(), 9, "warehouse")
	require.NoError(t, err)
	require.Equal(t, orders.StatusShipped, outcome.Status)
}

func TestConfirmRollbackOnFailure(t *testing.T) {
	updater := &fakeUpdater{err: errors.New("upstream down")}
	c := newTestController(updater, nil)

	_, err := c.Stage(3, "admin", orders.StatusCreated, orders.StatusCancelled)
	require.NoError(t, err)

	outcome, err := c.Confirm(context.Background(), 3, "admin")
	require.Error(t, err)
	require.False(t, outcome.Applied)
	require.Equal(t, orders.StatusCreated, outcome.Status)

	// displayed status rolled back, nothing left staged
	state, ok := c.View(3)
	require.True(t, ok)
	require.Equal(t, orders.StatusCreated, state.Current)
	require.Nil(t, state.Staged)
	require.False(t, state.Submitting)
}

func TestConfirmRevalidatesPermission(t *testing.T) {
	updater := &fakeUpdater{}
	c := newTestController(updater, nil)

	_, err := c.Stage(4, "warehouse", orders.StatusConfirmed, orders.StatusPacked)
	require.NoError(t, err)

	// role changed between staging and confirming; no server contact
	outcome, err := c.Confirm(context.Background(), 4, "sales")
	require.ErrorIs(t, err, ErrNotPermitted)
	require.False(t, outcome.Applied)
	require.Equal(t, orders.StatusConfirmed, outcome.Status)
	require.Zero(t, updater.calls)
}

func TestConfirmWithoutStage(t *testing.T) {
	c := newTestController(&fakeUpdater{}, nil)
	_, err := c.Confirm(context.Background(), 5, "admin")
	require.ErrorIs(t, err, ErrNothingStaged)
}

func TestConfirmMissingOrderID(t *testing.T) {
	c := newTestController(&fakeUpdater{}, nil)
	_, err := c.Confirm(context.Background(), 0, "admin")
	require.ErrorIs(t, err, ErrMissingOrder)
}

func TestInFlightSubmissionSerializesEditor(t *testing.T) {
	updater := &blockingUpdater{
		started: make(chan struct{}),
		release: make(chan struct{}),
		resp:    orders.Order{ID: 9, Status: orders.StatusPacked},
	}
	c := NewController(updater, nil, nil, slog.Default())

	_, err := c.Stage(9, "warehouse", orders.StatusConfirmed, orders.StatusPacked)
	require.NoError(t, err)

	done := make(chan struct{})
	var outcome Outcome
	var confirmErr error
	go func() {
		outcome, confirmErr = c.Confirm(context.Background(), 9, "warehouse")
		close(done)
	}()
	<-updater.started

	// nothing may touch the editor while the submission is parked
	_, err = c.Stage(9, "warehouse", orders.StatusConfirmed, orders.StatusShipped)
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	_, err = c.Confirm(context.Background(), 9, "warehouse")
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	_, err = c.Reset(9)
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	state, ok := c.View(9)
	require.True(t, ok)
	require.True(t, state.Submitting)

	close(updater.release)
	<-done

	require.NoError(t, confirmErr)
	require.True(t, outcome.Applied)
	require.Equal(t, orders.StatusPacked, outcome.Status)

	state, ok = c.View(9)
	require.True(t, ok)
	require.Equal(t, orders.StatusPacked, state.Current)
	require.False(t, state.Submitting)
}

func TestResetDropsStagedCandidate(t *testing.T) {
	c := newTestController(&fakeUpdater{}, nil)

	_, err := c.Stage(6, "admin", orders.StatusCreated, orders.StatusConfirmed)
	require.NoError(t, err)

	state, err := c.Reset(6)
	require.NoError(t, err)
	require.Nil(t, state.Staged)
	require.Equal(t, orders.StatusCreated, state.Current)
}
