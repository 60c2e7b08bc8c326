package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"alumniconnect/internal/domain"
)

func TestRegistrationRepository_Register_Success(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	start := now.Add(48 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, start_date, capacity`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "start_date", "capacity"}).
			AddRow("PUBLISHED", start, 30))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations`).
		WithArgs("ev-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectExec(`INSERT INTO registrations`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE events`).
		WithArgs("ev-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewRegistrationRepository(db)
	reg, err := repo.Register(ctx, "ev-1", "user-1", nil, now)
	require.NoError(t, err)
	require.NotEmpty(t, reg.ID)
	require.Equal(t, "ev-1", reg.EventID)
	require.Equal(t, "user-1", reg.UserID)
	require.Equal(t, domain.RegistrationStatusRegistered, reg.Status)
	require.Equal(t, now, reg.RegisteredAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_Register_UnlimitedCapacitySkipsCount(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	start := now.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, start_date, capacity`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "start_date", "capacity"}).
			AddRow("PUBLISHED", start, nil))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations`).
		WithArgs("ev-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO registrations`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE events`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewRegistrationRepository(db)
	_, err = repo.Register(ctx, "ev-1", "user-1", nil, now)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_Register_Failures(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "event not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT status, start_date, capacity`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "event not published",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT status, start_date, capacity`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"status", "start_date", "capacity"}).
						AddRow("DRAFT", future, 30))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrEventNotPublished,
		},
		{
			name: "registration window closed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT status, start_date, capacity`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"status", "start_date", "capacity"}).
						AddRow("PUBLISHED", now.Add(-time.Hour), 30))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrRegistrationClosed,
		},
		{
			name: "duplicate active registration",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT status, start_date, capacity`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"status", "start_date", "capacity"}).
						AddRow("PUBLISHED", future, 30))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations`).
					WithArgs("ev-1", "user-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrAlreadyRegistered,
		},
		{
			name: "event full",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT status, start_date, capacity`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"status", "start_date", "capacity"}).
						AddRow("PUBLISHED", future, 30))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations`).
					WithArgs("ev-1", "user-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrEventFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			_, err = repo.Register(ctx, "ev-1", "user-1", nil, now)
			require.ErrorIs(t, err, tt.wantErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_Cancel_Success(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, status`).
		WithArgs("ev-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("reg-1", "REGISTERED"))
	mock.ExpectExec(`UPDATE registrations`).
		WithArgs("reg-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE events`).
		WithArgs("ev-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewRegistrationRepository(db)
	require.NoError(t, repo.Cancel(ctx, "ev-1", "user-1", now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_Cancel_Failures(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "no active registration",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id, status`).
					WithArgs("ev-1", "user-1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "already attended",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id, status`).
					WithArgs("ev-1", "user-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("reg-1", "ATTENDED"))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrAlreadyAttended,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			err = repo.Cancel(ctx, "ev-1", "user-1", now)
			require.ErrorIs(t, err, tt.wantErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_GetActiveByEventAndUser(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	registered := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, event_id, user_id, status, notes, attended_at, registered_at, updated_at`).
		WithArgs("ev-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "status", "notes", "attended_at", "registered_at", "updated_at"}).
			AddRow("reg-1", "ev-1", "user-1", "CONFIRMED", nil, nil, registered, registered))

	repo := NewRegistrationRepository(db)
	reg, err := repo.GetActiveByEventAndUser(ctx, "ev-1", "user-1")
	require.NoError(t, err)
	require.Equal(t, "reg-1", reg.ID)
	require.Equal(t, domain.RegistrationStatusConfirmed, reg.Status)
	require.Nil(t, reg.Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_GetActiveByEventAndUser_NotFound(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, event_id, user_id, status`).
		WithArgs("ev-1", "user-1").
		WillReturnError(sql.ErrNoRows)

	repo := NewRegistrationRepository(db)
	_, err = repo.GetActiveByEventAndUser(ctx, "ev-1", "user-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistrationRepository_CountByEventIDs(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ids := []string{"ev-1", "ev-2", "ev-3"}
	mock.ExpectQuery(`SELECT event_id, COUNT\(\*\)`).
		WithArgs(pq.Array(ids)).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "count"}).
			AddRow("ev-1", 5).
			AddRow("ev-3", 1))

	repo := NewRegistrationRepository(db)
	counts, err := repo.CountByEventIDs(ctx, ids)
	require.NoError(t, err)
	require.Equal(t, 5, counts["ev-1"])
	require.Equal(t, 0, counts["ev-2"])
	require.Equal(t, 1, counts["ev-3"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_CountByEventIDs_Empty(t *testing.T) {
	ctx := context.Background()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRegistrationRepository(db)
	counts, err := repo.CountByEventIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, counts)
}
