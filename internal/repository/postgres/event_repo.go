package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"alumniconnect/internal/domain"
)

const eventColumns = `id, organizer_id, title, description, type, status, cover_image,
		start_date, end_date, location, is_online, meeting_url, capacity,
		current_attendees, price, currency, tags, requirements, agenda, speakers,
		view_count, created_at, updated_at`

// orderColumns maps filter attribute names to event columns. The filter is
// normalized before it reaches the repository, so lookups never miss, but we
// still fall back to start_date defensively.
var orderColumns = map[string]string{
	"startDate":        "start_date",
	"endDate":          "end_date",
	"title":            "title",
	"type":             "type",
	"status":           "status",
	"price":            "price",
	"capacity":         "capacity",
	"currentAttendees": "current_attendees",
	"viewCount":        "view_count",
	"createdAt":        "created_at",
	"updatedAt":        "updated_at",
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.OrganizerID, e.Title, e.Description, e.Type, e.Status, e.CoverImage,
		e.StartDate, e.EndDate, e.Location, e.IsOnline, e.MeetingURL, e.Capacity,
		e.CurrentAttendees, e.Price, e.Currency, pq.Array(e.Tags), e.Requirements,
		e.Agenda, e.Speakers, e.ViewCount, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, int, error) {
	where, args := buildEventWhere(filter, time.Now())

	countQuery := `SELECT COUNT(*) FROM events` + where
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderCol, ok := orderColumns[filter.OrderBy]
	if !ok {
		orderCol = "start_date"
	}
	dir := "ASC"
	if filter.Order == "desc" {
		dir = "DESC"
	}

	// Tie-break on id so pagination stays deterministic for equal sort keys.
	query := fmt.Sprintf(`
		SELECT `+eventColumns+`
		FROM events%s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d
	`, where, orderCol, dir, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) IncrementViewCount(ctx context.Context, id string) error {
	query := `UPDATE events SET view_count = view_count + 1 WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// buildEventWhere translates the filter into a conjunctive WHERE clause with
// $n placeholders. Search matches title, description or location
// case-insensitively.
func buildEventWhere(filter *domain.EventFilter, now time.Time) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	n := 1

	if filter.Status != nil {
		clauses = append(clauses, fmt.Sprintf("status = $%d", n))
		args = append(args, *filter.Status)
		n++
	}
	if filter.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)", n, n, n))
		args = append(args, "%"+filter.Search+"%")
		n++
	}
	if filter.Type != nil {
		clauses = append(clauses, fmt.Sprintf("type = $%d", n))
		args = append(args, *filter.Type)
		n++
	}
	if filter.IsOnline != nil {
		clauses = append(clauses, fmt.Sprintf("is_online = $%d", n))
		args = append(args, *filter.IsOnline)
		n++
	}
	if filter.OrganizerID != "" {
		clauses = append(clauses, fmt.Sprintf("organizer_id = $%d", n))
		args = append(args, filter.OrganizerID)
		n++
	}
	if filter.Upcoming {
		clauses = append(clauses, fmt.Sprintf("start_date >= $%d", n))
		args = append(args, now)
		n++
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var coverNull, meetingNull, reqNull, agendaNull, speakersNull sql.NullString
	var capNull sql.NullInt64
	err := row.Scan(
		&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Type, &e.Status, &coverNull,
		&e.StartDate, &e.EndDate, &e.Location, &e.IsOnline, &meetingNull, &capNull,
		&e.CurrentAttendees, &e.Price, &e.Currency, pq.Array(&e.Tags), &reqNull,
		&agendaNull, &speakersNull, &e.ViewCount, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
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
	return e, nil
}
