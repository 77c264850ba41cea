package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments, cancellations and feedback in Postgres.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a repository backed by a pgx pool or compatible DB.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("appointments: db required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new appointment. The unique index on (appt_date, appt_time)
// is the authority on slot collisions; violations surface as ErrSlotTaken so
// two requesters racing for the same slot get exactly one success.
func (r *PostgresRepository) Create(ctx context.Context, appt Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO appointments (id, client_name, appt_date, appt_time, requester_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		appt.ID, appt.ClientName, appt.Date, appt.Time, appt.RequesterID, appt.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

// CountByRequester returns how many appointments a requester currently holds.
func (r *PostgresRepository) CountByRequester(ctx context.Context, requesterID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE requester_id = $1`, requesterID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("appointments: count by requester: %w", err)
	}
	return count, nil
}

// FindByDateTime returns the appointment occupying a slot, or ErrNotFound.
func (r *PostgresRepository) FindByDateTime(ctx context.Context, date, timeStr string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, client_name, appt_date, appt_time, requester_id, created_at
		FROM appointments
		WHERE appt_date = $1 AND appt_time = $2`, date, timeStr)

	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: find by date/time: %w", err)
	}
	return appt, nil
}

// FindByDate returns the day's appointments ordered by slot time.
func (r *PostgresRepository) FindByDate(ctx context.Context, date string) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, client_name, appt_date, appt_time, requester_id, created_at
		FROM appointments
		WHERE appt_date = $1
		ORDER BY appt_time ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: find by date: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// FindFrom returns all appointments on or after the given date.
func (r *PostgresRepository) FindFrom(ctx context.Context, date string) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, client_name, appt_date, appt_time, requester_id, created_at
		FROM appointments
		WHERE appt_date >= $1
		ORDER BY appt_date ASC, appt_time ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: find from: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// DeleteByNameDateTime removes the appointment matching exactly, or ErrNotFound.
func (r *PostgresRepository) DeleteByNameDateTime(ctx context.Context, name, date, timeStr string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM appointments
		WHERE client_name = $1 AND appt_date = $2 AND appt_time = $3`,
		name, date, timeStr)
	if err != nil {
		return fmt.Errorf("appointments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOlderThan removes appointments dated strictly before the cutoff date.
func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, date string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE appt_date < $1`, date)
	if err != nil {
		return 0, fmt.Errorf("appointments: delete older than: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertCancellation appends a cancellation audit record.
func (r *PostgresRepository) InsertCancellation(ctx context.Context, rec Cancellation) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO cancellations (id, client_name, appt_date, appt_time, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.ClientName, rec.Date, rec.Time, rec.Reason, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert cancellation: %w", err)
	}
	return nil
}

// ListCancellations returns every cancellation record, oldest first.
func (r *PostgresRepository) ListCancellations(ctx context.Context) ([]Cancellation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, client_name, appt_date, appt_time, reason, created_at
		FROM cancellations
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("appointments: list cancellations: %w", err)
	}
	defer rows.Close()

	var out []Cancellation
	for rows.Next() {
		var rec Cancellation
		var date time.Time
		if err := rows.Scan(&rec.ID, &rec.ClientName, &date, &rec.Time, &rec.Reason, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan cancellation: %w", err)
		}
		rec.Date = date.Format(DateLayout)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list cancellations: %w", err)
	}
	return out, nil
}

// InsertFeedback appends a feedback record.
func (r *PostgresRepository) InsertFeedback(ctx context.Context, fb Feedback) error {
	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO feedbacks (id, client_name, comment, rating, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		fb.ID, fb.ClientName, fb.Comment, fb.Rating, fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert feedback: %w", err)
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	var date time.Time
	if err := row.Scan(&appt.ID, &appt.ClientName, &date, &appt.Time, &appt.RequesterID, &appt.CreatedAt); err != nil {
		return nil, err
	}
	appt.Date = date.Format(DateLayout)
	return &appt, nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var out []Appointment
	for rows.Next() {
		var appt Appointment
		var date time.Time
		if err := rows.Scan(&appt.ID, &appt.ClientName, &date, &appt.Time, &appt.RequesterID, &appt.CreatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		appt.Date = date.Format(DateLayout)
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: rows: %w", err)
	}
	return out, nil
}
