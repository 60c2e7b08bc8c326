package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"alumniconnect/internal/domain"
)

const registrationColumns = `id, event_id, user_id, status, notes, attended_at, registered_at, updated_at`

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Register creates a registration and bumps the event's attendee counter in
// one transaction.
//
// The SELECT ... FOR UPDATE on the event row serializes concurrent attempts
// per event: a plain read-then-write would let two transactions observe the
// same free seat and both insert, overbooking the event. With the row lock
// held, the duplicate and capacity checks and the counter increment are
// atomic with respect to other registrations for the same event.
func (r *registrationRepository) Register(ctx context.Context, eventID, userID string, notes *string, now time.Time) (*domain.Registration, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var status domain.EventStatus
	var startDate time.Time
	var capNull sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT status, start_date, capacity
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, eventID).Scan(&status, &startDate, &capNull)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrNotFound
			return nil, err
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	if status != domain.EventStatusPublished {
		err = domain.ErrEventNotPublished
		return nil, err
	}
	if now.After(startDate) {
		err = domain.ErrRegistrationClosed
		return nil, err
	}

	// Uniqueness holds over non-cancelled rows only; a user may re-register
	// after cancelling, which creates a new row.
	var active int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM registrations
		WHERE event_id = $1 AND user_id = $2 AND status <> 'CANCELLED'
	`, eventID, userID).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("check duplicate registration: %w", err)
	}
	if active > 0 {
		err = domain.ErrAlreadyRegistered
		return nil, err
	}

	if capNull.Valid {
		// Capacity is checked against the live count of non-cancelled rows
		// rather than the cached counter, so a drifted counter cannot admit
		// attendees past capacity.
		var taken int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM registrations
			WHERE event_id = $1 AND status <> 'CANCELLED'
		`, eventID).Scan(&taken)
		if err != nil {
			return nil, fmt.Errorf("count active registrations: %w", err)
		}
		if taken >= int(capNull.Int64) {
			err = domain.ErrEventFull
			return nil, err
		}
	}

	reg := domain.NewRegistration(eventID, userID, notes, now)
	reg.ID = uuid.New().String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO registrations (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, reg.ID, reg.EventID, reg.UserID, reg.Status, reg.Notes, reg.AttendedAt, reg.RegisteredAt, reg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE events
		SET current_attendees = current_attendees + 1, updated_at = $2
		WHERE id = $1
	`, eventID, now)
	if err != nil {
		return nil, fmt.Errorf("increment attendee count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, nil
}

// Cancel marks the caller's non-cancelled registration CANCELLED and
// decrements the attendee counter, atomically.
func (r *registrationRepository) Cancel(ctx context.Context, eventID, userID string, now time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var regID string
	var status domain.RegistrationStatus
	err = tx.QueryRowContext(ctx, `
		SELECT id, status
		FROM registrations
		WHERE event_id = $1 AND user_id = $2 AND status <> 'CANCELLED'
		ORDER BY registered_at DESC
		LIMIT 1
		FOR UPDATE
	`, eventID, userID).Scan(&regID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrNotFound
			return err
		}
		return fmt.Errorf("lock registration row: %w", err)
	}

	if status == domain.RegistrationStatusAttended {
		err = domain.ErrAlreadyAttended
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE registrations
		SET status = 'CANCELLED', updated_at = $2
		WHERE id = $1
	`, regID, now)
	if err != nil {
		return fmt.Errorf("cancel registration: %w", err)
	}

	// GREATEST floors the counter at zero. It should never go negative while
	// the invariant holds; the floor is a guard against pre-existing drift.
	_, err = tx.ExecContext(ctx, `
		UPDATE events
		SET current_attendees = GREATEST(current_attendees - 1, 0), updated_at = $2
		WHERE id = $1
	`, eventID, now)
	if err != nil {
		return fmt.Errorf("decrement attendee count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *registrationRepository) GetActiveByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND user_id = $2 AND status <> 'CANCELLED'
		ORDER BY registered_at DESC
		LIMIT 1
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID string, status *domain.RegistrationStatus, upcoming bool) ([]*domain.RegistrationWithEvent, error) {
	query := `
		SELECT r.id, r.event_id, r.user_id, r.status, r.notes, r.attended_at, r.registered_at, r.updated_at,
			e.id, e.organizer_id, e.title, e.description, e.type, e.status, e.cover_image,
			e.start_date, e.end_date, e.location, e.is_online, e.meeting_url, e.capacity,
			e.current_attendees, e.price, e.currency, e.tags, e.requirements, e.agenda, e.speakers,
			e.view_count, e.created_at, e.updated_at
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
	`
	args := []interface{}{userID}
	n := 2
	if status != nil {
		query += fmt.Sprintf(" AND r.status = $%d", n)
		args = append(args, *status)
		n++
	}
	if upcoming {
		query += fmt.Sprintf(" AND e.start_date >= $%d", n)
		args = append(args, time.Now())
		n++
	}
	query += " ORDER BY r.registered_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.RegistrationWithEvent, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		e := &domain.Event{}
		var notesNull sql.NullString
		var attendedNull sql.NullTime
		var coverNull, meetingNull, reqNull, agendaNull, speakersNull sql.NullString
		var capNull sql.NullInt64
		err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &notesNull, &attendedNull, &reg.RegisteredAt, &reg.UpdatedAt,
			&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Type, &e.Status, &coverNull,
			&e.StartDate, &e.EndDate, &e.Location, &e.IsOnline, &meetingNull, &capNull,
			&e.CurrentAttendees, &e.Price, &e.Currency, pq.Array(&e.Tags), &reqNull,
			&agendaNull, &speakersNull, &e.ViewCount, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if notesNull.Valid {
			reg.Notes = &notesNull.String
		}
		if attendedNull.Valid {
			reg.AttendedAt = &attendedNull.Time
		}
		if coverNull.Valid {
			e.CoverImage = &coverNull.String
		}
		if meetingNull.Valid {
			e.MeetingURL = &meetingNull.String
		}
		if capNull.Valid {
			c := int(capNull.Int64)
			e.Capacity = &c
		}
		if reqNull.Valid {
			e.Requirements = &reqNull.String
		}
		if agendaNull.Valid {
			e.Agenda = &agendaNull.String
		}
		if speakersNull.Valid {
			e.Speakers = &speakersNull.String
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
		result = append(result, &domain.RegistrationWithEvent{Registration: reg, Event: e})
	}
	return result, rows.Err()
}

func (r *registrationRepository) CountByEventIDs(ctx context.Context, eventIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	query := `
		SELECT event_id, COUNT(*)
		FROM registrations
		WHERE event_id = ANY($1)
		GROUP BY event_id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var eventID string
		var count int
		if err := rows.Scan(&eventID, &count); err != nil {
			return nil, err
		}
		counts[eventID] = count
	}
	return counts, rows.Err()
}

func (r *registrationRepository) ListByUserForEvents(ctx context.Context, userID string, eventIDs []string) (map[string]*domain.Registration, error) {
	regs := make(map[string]*domain.Registration, len(eventIDs))
	if userID == "" || len(eventIDs) == 0 {
		return regs, nil
	}
	query := `
		SELECT DISTINCT ON (event_id) ` + registrationColumns + `
		FROM registrations
		WHERE user_id = $1 AND event_id = ANY($2)
		ORDER BY event_id, registered_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs[reg.EventID] = reg
	}
	return regs, rows.Err()
}

func scanRegistration(row rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var notesNull sql.NullString
	var attendedNull sql.NullTime
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.UserID, &reg.Status,
		&notesNull, &attendedNull, &reg.RegisteredAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if notesNull.Valid {
		reg.Notes = &notesNull.String
	}
	if attendedNull.Valid {
		reg.AttendedAt = &attendedNull.Time
	}
	return reg, nil
}
