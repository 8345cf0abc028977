package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/okantomi/chorewheel/internal/model"
)

// SwapStore persists swap requests and applies the approval exchange.
type SwapStore struct {
	db *sql.DB
}

func NewSwapStore(db *sql.DB) *SwapStore {
	return &SwapStore{db: db}
}

func scanSwap(scanner interface{ Scan(...any) error }) (*model.SwapRequest, error) {
	var sw model.SwapRequest
	var reason sql.NullString
	var respondedAt sql.NullTime

	err := scanner.Scan(
		&sw.ID, &sw.RequesterOccupantID, &sw.TargetOccupantID, &sw.ScheduleID,
		&reason, &sw.Status, &respondedAt, &sw.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reason.Valid {
		sw.Reason = &reason.String
	}
	if respondedAt.Valid {
		sw.RespondedAt = &respondedAt.Time
	}
	return &sw, nil
}

const swapCols = `id, requester_occupant_id, target_occupant_id, schedule_id, reason, status, responded_at, created_at`

func (s *SwapStore) Create(requesterID, targetID, scheduleID int64, reason *string) (*model.SwapRequest, error) {
	var r sql.NullString
	if reason != nil {
		r = sql.NullString{String: *reason, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO swap_requests (requester_occupant_id, target_occupant_id, schedule_id, reason) VALUES (?, ?, ?, ?)`,
		requesterID, targetID, scheduleID, r,
	)
	if err != nil {
		return nil, fmt.Errorf("insert swap: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *SwapStore) GetByID(id int64) (*model.SwapRequest, error) {
	row := s.db.QueryRow(`SELECT `+swapCols+` FROM swap_requests WHERE id = ?`, id)
	sw, err := scanSwap(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get swap: %w", err)
	}
	return sw, nil
}

// FindPending returns the PENDING request for the exact
// (requester, target, schedule) triple, if one exists.
func (s *SwapStore) FindPending(requesterID, targetID, scheduleID int64) (*model.SwapRequest, error) {
	row := s.db.QueryRow(
		`SELECT `+swapCols+` FROM swap_requests
		 WHERE requester_occupant_id = ? AND target_occupant_id = ? AND schedule_id = ? AND status = ?`,
		requesterID, targetID, scheduleID, model.SwapPending,
	)
	sw, err := scanSwap(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pending swap: %w", err)
	}
	return sw, nil
}

// ListByOccupant returns swaps where the occupant is requester or target,
// newest first.
func (s *SwapStore) ListByOccupant(occupantID int64) ([]model.SwapRequest, error) {
	rows, err := s.db.Query(
		`SELECT `+swapCols+` FROM swap_requests
		 WHERE requester_occupant_id = ? OR target_occupant_id = ?
		 ORDER BY created_at DESC, id DESC`,
		occupantID, occupantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list swaps: %w", err)
	}
	defer rows.Close()

	var swaps []model.SwapRequest
	for rows.Next() {
		sw, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap: %w", err)
		}
		swaps = append(swaps, *sw)
	}
	return swaps, rows.Err()
}

// Resolve stamps a terminal status and respondedAt on a PENDING request.
// Returns false if the request was not PENDING anymore.
func (s *SwapStore) Resolve(id int64, status model.SwapStatus, respondedAt time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE swap_requests SET status = ?, responded_at = ? WHERE id = ? AND status = ?`,
		status, respondedAt.UTC(), id, model.SwapPending,
	)
	if err != nil {
		return false, fmt.Errorf("resolve swap: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// Approve flips the request to APPROVED and exchanges ownership of every
// completion record of the schedule between requester and target, all in one
// transaction. No reader can observe a half-applied exchange. Returns false
// if the request was not PENDING.
func (s *SwapStore) Approve(id int64, respondedAt time.Time, scheduleID, requesterID, targetID int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE swap_requests SET status = ?, responded_at = ? WHERE id = ? AND status = ?`,
		model.SwapApproved, respondedAt.UTC(), id, model.SwapPending,
	)
	if err != nil {
		return false, fmt.Errorf("approve swap: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n != 1 {
		return false, nil
	}

	// Full ownership exchange of the week's completion set, both directions
	// in a single statement.
	_, err = tx.Exec(
		`UPDATE completion_records
		 SET occupant_id = CASE occupant_id WHEN ? THEN ? ELSE ? END
		 WHERE schedule_id = ? AND occupant_id IN (?, ?)`,
		requesterID, targetID, requesterID, scheduleID, requesterID, targetID,
	)
	if err != nil {
		return false, fmt.Errorf("exchange completions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit approval: %w", err)
	}
	return true, nil
}

// ExpireOlderThan flips every PENDING request created at or before the
// cutoff to EXPIRED. Returns the number of rows flipped.
func (s *SwapStore) ExpireOlderThan(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(
		`UPDATE swap_requests SET status = ? WHERE status = ? AND created_at <= ?`,
		model.SwapExpired, model.SwapPending, cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("expire swaps: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
