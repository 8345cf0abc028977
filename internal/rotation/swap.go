package rotation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/okantomi/chorewheel/internal/model"
	"github.com/okantomi/chorewheel/internal/store"
)

// SwapService runs the swap negotiation state machine. PENDING is the only
// non-terminal state; APPROVED, REJECTED, CANCELLED, and EXPIRED are final.
type SwapService struct {
	registry  Registry
	schedules *store.ScheduleStore
	swaps     *store.SwapStore
	notifier  Notifier
	logger    *slog.Logger
}

func NewSwapService(registry Registry, schedules *store.ScheduleStore, swaps *store.SwapStore, notifier Notifier, logger *slog.Logger) *SwapService {
	return &SwapService{
		registry:  registry,
		schedules: schedules,
		swaps:     swaps,
		notifier:  notifier,
		logger:    logger,
	}
}

// Propose creates a PENDING swap of the requester's entire week with the
// target occupant. Fails if either occupant is unknown, the week has no
// schedule, or an identical PENDING request already exists. Requester and
// target may live in different units; no same-unit check is made here.
func (s *SwapService) Propose(requesterID, targetID int64, weekID string, reason *string) (*model.SwapRequest, error) {
	requester, err := s.registry.Occupant(requesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, fmt.Errorf("requester occupant %d: %w", requesterID, ErrNotFound)
	}

	target, err := s.registry.Occupant(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("target occupant %d: %w", targetID, ErrNotFound)
	}

	sched, err := s.schedules.ScheduleByWeekID(weekID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, fmt.Errorf("schedule for week %s: %w", weekID, ErrNotFound)
	}

	existing, err := s.swaps.FindPending(requesterID, targetID, sched.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("pending swap already exists: %w", ErrConflict)
	}

	sw, err := s.swaps.Create(requesterID, targetID, sched.ID, reason)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SwapProposed(target.TenantID, requester.Name, target.Name, weekID); err != nil {
		s.logger.Warn("swap proposal notification failed", "swap_id", sw.ID, "error", err)
	}
	return sw, nil
}

// Approve resolves a PENDING request and atomically exchanges ownership of
// every completion record of the schedule between requester and target. Only
// the target occupant may approve.
func (s *SwapService) Approve(swapID, responderID int64, now time.Time) (*model.SwapRequest, error) {
	sw, err := s.pendingSwap(swapID)
	if err != nil {
		return nil, err
	}
	if responderID != sw.TargetOccupantID {
		return nil, fmt.Errorf("only the target occupant may approve: %w", ErrInvalidState)
	}

	ok, err := s.swaps.Approve(sw.ID, now, sw.ScheduleID, sw.RequesterOccupantID, sw.TargetOccupantID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("swap %d is no longer pending: %w", swapID, ErrInvalidState)
	}

	s.notifyResolved(sw, true)
	return s.swaps.GetByID(sw.ID)
}

// Reject resolves a PENDING request without touching any completion records.
// Only the target occupant may reject.
func (s *SwapService) Reject(swapID, responderID int64, now time.Time) (*model.SwapRequest, error) {
	sw, err := s.pendingSwap(swapID)
	if err != nil {
		return nil, err
	}
	if responderID != sw.TargetOccupantID {
		return nil, fmt.Errorf("only the target occupant may reject: %w", ErrInvalidState)
	}

	ok, err := s.swaps.Resolve(sw.ID, model.SwapRejected, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("swap %d is no longer pending: %w", swapID, ErrInvalidState)
	}

	s.notifyResolved(sw, false)
	return s.swaps.GetByID(sw.ID)
}

// Cancel withdraws a PENDING request. Only the original requester may cancel.
func (s *SwapService) Cancel(swapID, callerID int64, now time.Time) (*model.SwapRequest, error) {
	sw, err := s.pendingSwap(swapID)
	if err != nil {
		return nil, err
	}
	if callerID != sw.RequesterOccupantID {
		return nil, fmt.Errorf("only the requester may cancel: %w", ErrInvalidState)
	}

	ok, err := s.swaps.Resolve(sw.ID, model.SwapCancelled, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("swap %d is no longer pending: %w", swapID, ErrInvalidState)
	}
	return s.swaps.GetByID(sw.ID)
}

// ListByOccupant returns the swaps an occupant is involved in, newest first.
func (s *SwapService) ListByOccupant(occupantID int64) ([]model.SwapRequest, error) {
	return s.swaps.ListByOccupant(occupantID)
}

func (s *SwapService) pendingSwap(swapID int64) (*model.SwapRequest, error) {
	sw, err := s.swaps.GetByID(swapID)
	if err != nil {
		return nil, err
	}
	if sw == nil {
		return nil, fmt.Errorf("swap %d: %w", swapID, ErrNotFound)
	}
	if sw.Status != model.SwapPending {
		return nil, fmt.Errorf("swap %d is %s: %w", swapID, sw.Status, ErrInvalidState)
	}
	return sw, nil
}

func (s *SwapService) notifyResolved(sw *model.SwapRequest, approved bool) {
	requester, err := s.registry.Occupant(sw.RequesterOccupantID)
	if err != nil || requester == nil {
		s.logger.Warn("swap resolution notification skipped: requester lookup failed", "swap_id", sw.ID, "error", err)
		return
	}
	responder, err := s.registry.Occupant(sw.TargetOccupantID)
	if err != nil || responder == nil {
		s.logger.Warn("swap resolution notification skipped: responder lookup failed", "swap_id", sw.ID, "error", err)
		return
	}
	if err := s.notifier.SwapResolved(requester.TenantID, responder.Name, approved); err != nil {
		s.logger.Warn("swap resolution notification failed", "swap_id", sw.ID, "error", err)
	}
}
