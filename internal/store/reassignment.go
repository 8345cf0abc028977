package store

import (
	"database/sql"
	"fmt"

	"github.com/okantomi/chorewheel/internal/model"
)

// ReassignmentStore writes the audit records produced when a tenancy ends.
// Nothing reads them back except reporting; they move no completion records.
type ReassignmentStore struct {
	db *sql.DB
}

func NewReassignmentStore(db *sql.DB) *ReassignmentStore {
	return &ReassignmentStore{db: db}
}

func (s *ReassignmentStore) Create(occupantID int64, originalDay int, weekID, reason string) (*model.TemporaryReassignment, error) {
	result, err := s.db.Exec(
		`INSERT INTO temporary_reassignments (occupant_id, original_day, week_id, reason) VALUES (?, ?, ?, ?)`,
		occupantID, originalDay, weekID, reason,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reassignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT id, occupant_id, original_day, week_id, reason, created_at FROM temporary_reassignments WHERE id = ?`, id)
	var r model.TemporaryReassignment
	if err := row.Scan(&r.ID, &r.OccupantID, &r.OriginalDay, &r.WeekID, &r.Reason, &r.CreatedAt); err != nil {
		return nil, fmt.Errorf("get reassignment: %w", err)
	}
	return &r, nil
}

func (s *ReassignmentStore) ListByWeek(weekID string) ([]model.TemporaryReassignment, error) {
	rows, err := s.db.Query(
		`SELECT id, occupant_id, original_day, week_id, reason, created_at
		 FROM temporary_reassignments WHERE week_id = ? ORDER BY id ASC`, weekID)
	if err != nil {
		return nil, fmt.Errorf("list reassignments: %w", err)
	}
	defer rows.Close()

	var out []model.TemporaryReassignment
	for rows.Next() {
		var r model.TemporaryReassignment
		if err := rows.Scan(&r.ID, &r.OccupantID, &r.OriginalDay, &r.WeekID, &r.Reason, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reassignment: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
