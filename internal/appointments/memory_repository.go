package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory repository for single-instance deployments
// and tests. The mutex makes the availability-check-then-insert race resolve
// to exactly one winner, mirroring the database unique index.
type MemoryRepository struct {
	mu            sync.Mutex
	appts         map[string]Appointment // "date|time"
	cancellations []Cancellation
	feedbacks     []Feedback
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{appts: make(map[string]Appointment)}
}

func slotKey(date, timeStr string) string {
	return date + "|" + timeStr
}

// Create inserts an appointment, failing with ErrSlotTaken on slot collision.
func (r *MemoryRepository) Create(_ context.Context, appt Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(appt.Date, appt.Time)
	if _, exists := r.appts[key]; exists {
		return ErrSlotTaken
	}
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}
	r.appts[key] = appt
	return nil
}

// CountByRequester returns how many appointments a requester holds.
func (r *MemoryRepository) CountByRequester(_ context.Context, requesterID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, appt := range r.appts {
		if appt.RequesterID == requesterID {
			count++
		}
	}
	return count, nil
}

// FindByDateTime returns the appointment occupying a slot, or ErrNotFound.
func (r *MemoryRepository) FindByDateTime(_ context.Context, date, timeStr string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appt, ok := r.appts[slotKey(date, timeStr)]; ok {
		return &appt, nil
	}
	return nil, ErrNotFound
}

// FindByDate returns the day's appointments ordered by slot time.
func (r *MemoryRepository) FindByDate(_ context.Context, date string) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Appointment
	for _, appt := range r.appts {
		if appt.Date == date {
			out = append(out, appt)
		}
	}
	sortAppointments(out)
	return out, nil
}

// FindFrom returns all appointments on or after the given date.
func (r *MemoryRepository) FindFrom(_ context.Context, date string) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Appointment
	for _, appt := range r.appts {
		if appt.Date >= date {
			out = append(out, appt)
		}
	}
	sortAppointments(out)
	return out, nil
}

// DeleteByNameDateTime removes the exact match, or returns ErrNotFound.
func (r *MemoryRepository) DeleteByNameDateTime(_ context.Context, name, date, timeStr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(date, timeStr)
	appt, ok := r.appts[key]
	if !ok || appt.ClientName != name {
		return ErrNotFound
	}
	delete(r.appts, key)
	return nil
}

// DeleteOlderThan removes appointments dated strictly before the cutoff date.
func (r *MemoryRepository) DeleteOlderThan(_ context.Context, date string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for key, appt := range r.appts {
		if appt.Date < date {
			delete(r.appts, key)
			removed++
		}
	}
	return removed, nil
}

// InsertCancellation appends a cancellation record.
func (r *MemoryRepository) InsertCancellation(_ context.Context, rec Cancellation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.cancellations = append(r.cancellations, rec)
	return nil
}

// ListCancellations returns every cancellation record.
func (r *MemoryRepository) ListCancellations(_ context.Context) ([]Cancellation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Cancellation, len(r.cancellations))
	copy(out, r.cancellations)
	return out, nil
}

// InsertFeedback appends a feedback record.
func (r *MemoryRepository) InsertFeedback(_ context.Context, fb Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	r.feedbacks = append(r.feedbacks, fb)
	return nil
}

// Feedbacks returns a copy of stored feedback records, for tests.
func (r *MemoryRepository) Feedbacks() []Feedback {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Feedback, len(r.feedbacks))
	copy(out, r.feedbacks)
	return out
}

func sortAppointments(appts []Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return appts[i].Time < appts[j].Time
	})
}
