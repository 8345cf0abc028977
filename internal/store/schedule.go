package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okantomi/chorewheel/internal/model"
)

// ScheduleStore persists schedule weeks and their completion records.
type ScheduleStore struct {
	db *sql.DB
}

func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// Assignment is one (occupant, chore) pair to materialize as a PENDING
// completion record.
type Assignment struct {
	OccupantID int64
	ChoreID    int64
}

// CompletionDetail is a completion record joined with its chore and occupant
// for display.
type CompletionDetail struct {
	model.CompletionRecord
	ChoreName      string `json:"chore_name"`
	ChoreSortOrder int    `json:"chore_sort_order"`
	OccupantName   string `json:"occupant_name"`
}

func scanSchedule(scanner interface{ Scan(...any) error }) (*model.ScheduleWeek, error) {
	var w model.ScheduleWeek
	if err := scanner.Scan(&w.ID, &w.WeekID, &w.WeekStart, &w.CreatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

const scheduleCols = `id, week_id, week_start, created_at`

func (s *ScheduleStore) ScheduleByWeekID(weekID string) (*model.ScheduleWeek, error) {
	row := s.db.QueryRow(`SELECT `+scheduleCols+` FROM schedule_weeks WHERE week_id = ?`, weekID)
	w, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule by week id: %w", err)
	}
	return w, nil
}

func (s *ScheduleStore) ScheduleByID(id int64) (*model.ScheduleWeek, error) {
	row := s.db.QueryRow(`SELECT `+scheduleCols+` FROM schedule_weeks WHERE id = ?`, id)
	w, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return w, nil
}

// CreateSchedule inserts the schedule row and one PENDING completion per
// assignment in a single transaction. Two callers may race on the same
// weekID; the UNIQUE constraint on week_id arbitrates, and the loser falls
// back to the winner's row. The bool reports whether this call created it.
func (s *ScheduleStore) CreateSchedule(weekID string, weekStart time.Time, assignments []Assignment) (*model.ScheduleWeek, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO schedule_weeks (week_id, week_start) VALUES (?, ?)`,
		weekID, weekStart.UTC(),
	)
	if err != nil {
		// Likely lost the uniqueness race — fall back to the existing row.
		tx.Rollback()
		existing, lookupErr := s.ScheduleByWeekID(weekID)
		if lookupErr == nil && existing != nil {
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("insert schedule: %w", err)
	}
	scheduleID, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}

	for _, a := range assignments {
		if _, err := tx.Exec(
			`INSERT INTO completion_records (schedule_id, occupant_id, chore_id) VALUES (?, ?, ?)`,
			scheduleID, a.OccupantID, a.ChoreID,
		); err != nil {
			return nil, false, fmt.Errorf("insert completion: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit schedule: %w", err)
	}

	w, err := s.ScheduleByID(scheduleID)
	if err != nil {
		return nil, false, err
	}
	return w, true, nil
}

// --- Completion records ---

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.CompletionRecord, error) {
	var c model.CompletionRecord
	var completedAt sql.NullTime
	var photoRefs string
	var notes sql.NullString

	err := scanner.Scan(
		&c.ID, &c.ScheduleID, &c.OccupantID, &c.ChoreID, &c.Status,
		&completedAt, &photoRefs, &notes, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		c.CompletedAt = &completedAt.Time
	}
	if notes.Valid {
		c.Notes = &notes.String
	}
	c.PhotoRefs = []string{}
	if photoRefs != "" {
		if err := json.Unmarshal([]byte(photoRefs), &c.PhotoRefs); err != nil {
			return nil, fmt.Errorf("decode photo refs: %w", err)
		}
	}
	return &c, nil
}

const completionCols = `id, schedule_id, occupant_id, chore_id, status, completed_at, photo_refs, notes, created_at`

func (s *ScheduleStore) Completion(id int64) (*model.CompletionRecord, error) {
	row := s.db.QueryRow(`SELECT `+completionCols+` FROM completion_records WHERE id = ?`, id)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

// MarkCompleted flips a completion to COMPLETED and stamps completedAt.
// A nil photoRefs or notes leaves the stored value untouched, so a
// re-completion without attachments never erases earlier ones.
func (s *ScheduleStore) MarkCompleted(id int64, completedAt time.Time, photoRefs []string, notes *string) error {
	query := `UPDATE completion_records SET status = ?, completed_at = ?`
	args := []any{model.StatusCompleted, completedAt.UTC()}

	if photoRefs != nil {
		encoded, err := json.Marshal(photoRefs)
		if err != nil {
			return fmt.Errorf("encode photo refs: %w", err)
		}
		query += `, photo_refs = ?`
		args = append(args, string(encoded))
	}
	if notes != nil {
		query += `, notes = ?`
		args = append(args, *notes)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// CompletionsBySchedule returns every completion record of a schedule.
func (s *ScheduleStore) CompletionsBySchedule(scheduleID int64) ([]model.CompletionRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM completion_records WHERE schedule_id = ? ORDER BY id ASC`,
		scheduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.CompletionRecord
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}

// CompletionsDetailed returns a schedule's completions for the given
// occupants, joined with chore and occupant, ordered by occupant name then
// chore sort order.
func (s *ScheduleStore) CompletionsDetailed(scheduleID int64, occupantIDs []int64) ([]CompletionDetail, error) {
	if len(occupantIDs) == 0 {
		return nil, nil
	}

	query := `SELECT cr.id, cr.schedule_id, cr.occupant_id, cr.chore_id, cr.status,
	                 cr.completed_at, cr.photo_refs, cr.notes, cr.created_at,
	                 cd.name, cd.sort_order, o.name
	          FROM completion_records cr
	          JOIN chore_definitions cd ON cd.id = cr.chore_id
	          JOIN occupants o ON o.id = cr.occupant_id
	          WHERE cr.schedule_id = ? AND cr.occupant_id IN (`
	args := []any{scheduleID}
	for i, id := range occupantIDs {
		if i > 0 {
			query += `, `
		}
		query += `?`
		args = append(args, id)
	}
	query += `) ORDER BY o.name ASC, cd.sort_order ASC, cd.name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list detailed completions: %w", err)
	}
	defer rows.Close()

	var details []CompletionDetail
	for rows.Next() {
		var d CompletionDetail
		var completedAt sql.NullTime
		var photoRefs string
		var notes sql.NullString
		err := rows.Scan(
			&d.ID, &d.ScheduleID, &d.OccupantID, &d.ChoreID, &d.Status,
			&completedAt, &photoRefs, &notes, &d.CreatedAt,
			&d.ChoreName, &d.ChoreSortOrder, &d.OccupantName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan detailed completion: %w", err)
		}
		if completedAt.Valid {
			d.CompletedAt = &completedAt.Time
		}
		if notes.Valid {
			d.Notes = &notes.String
		}
		d.PhotoRefs = []string{}
		if photoRefs != "" {
			if err := json.Unmarshal([]byte(photoRefs), &d.PhotoRefs); err != nil {
				return nil, fmt.Errorf("decode photo refs: %w", err)
			}
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// OccupantStats aggregates every completion record ever created for an
// occupant.
func (s *ScheduleStore) OccupantStats(occupantID int64) (total, completed, missed, pending int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(status = ?), 0),
		        COALESCE(SUM(status = ?), 0),
		        COALESCE(SUM(status = ?), 0)
		 FROM completion_records WHERE occupant_id = ?`,
		model.StatusCompleted, model.StatusMissed, model.StatusPending, occupantID,
	).Scan(&total, &completed, &missed, &pending)
	if err != nil {
		err = fmt.Errorf("occupant stats: %w", err)
	}
	return
}

// SweepMissed flips PENDING completions to MISSED for occupants whose chore
// day is the given weekday, restricted to schedules whose week has already
// started. Departed occupants are included: a chore left pending by someone
// who moved out still ends up MISSED. Returns the number of rows flipped;
// already-MISSED rows are untouched, so re-running is a no-op.
func (s *ScheduleStore) SweepMissed(choreDay int, weekStartOnOrBefore time.Time) (int64, error) {
	result, err := s.db.Exec(
		`UPDATE completion_records SET status = ?
		 WHERE status = ?
		   AND occupant_id IN (
		       SELECT id FROM occupants WHERE chore_day = ?)
		   AND schedule_id IN (
		       SELECT id FROM schedule_weeks WHERE week_start <= ?)`,
		model.StatusMissed, model.StatusPending, choreDay, weekStartOnOrBefore.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("sweep missed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
