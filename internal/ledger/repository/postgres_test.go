package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"workspace-console/backend/internal/ledger/domain"
)

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestReserve(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO workspace_usage`).
		WithArgs("eu-1", "u-1", "ws-1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Reserve(context.Background(), &domain.WorkspaceUsage{
		Region: "eu-1", UserID: "u-1", WorkspaceID: "ws-1", Seat: 1,
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestReserve_DuplicateKey(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO workspace_usage`).
		WithArgs("eu-1", "u-1", "ws-1", 2).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "workspace_usage_pkey"})

	err := repo.Reserve(context.Background(), &domain.WorkspaceUsage{
		Region: "eu-1", UserID: "u-1", WorkspaceID: "ws-1", Seat: 2,
	})
	if !errors.Is(err, ErrAlreadyReserved) {
		t.Fatalf("Reserve = %v, want ErrAlreadyReserved", err)
	}
}

func TestReserve_OtherErrorPassesThrough(t *testing.T) {
	repo, mock := newMock(t)
	ioErr := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO workspace_usage`).
		WithArgs("eu-1", "u-1", "ws-1", 1).
		WillReturnError(ioErr)

	err := repo.Reserve(context.Background(), &domain.WorkspaceUsage{
		Region: "eu-1", UserID: "u-1", WorkspaceID: "ws-1", Seat: 1,
	})
	if !errors.Is(err, ioErr) {
		t.Fatalf("Reserve = %v, want the underlying error", err)
	}
}

func TestRelease(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM workspace_usage`).
		WithArgs("eu-1", "u-1", "ws-1").
		WillReturnResult(sqlmock.NewResult(0, 0)) // missing row is fine

	if err := repo.Release(context.Background(), "eu-1", "u-1", "ws-1"); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestGet_NotFoundReturnsNil(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT region, user_id, workspace_id, seat\s+FROM workspace_usage`).
		WithArgs("eu-1", "u-1", "ws-1").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.Get(context.Background(), "eu-1", "u-1", "ws-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u != nil {
		t.Errorf("Get = %+v, want nil", u)
	}
}

func TestSwapSeats(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`UPDATE workspace_usage`).
		WithArgs("eu-1", "ws-1", "u-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.SwapSeats(context.Background(), "eu-1", "ws-1", "u-1", "u-2"); err != nil {
		t.Fatalf("SwapSeats: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSwapSeats_MissingRowFails(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`UPDATE workspace_usage`).
		WithArgs("eu-1", "ws-1", "u-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SwapSeats(context.Background(), "eu-1", "ws-1", "u-1", "u-2"); err == nil {
		t.Fatal("SwapSeats should fail when fewer than 2 rows update")
	}
}

func TestCountFor(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM workspace_usage`).
		WithArgs("eu-1", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountFor(context.Background(), "eu-1", "u-1")
	if err != nil {
		t.Fatalf("CountFor: %v", err)
	}
	if n != 3 {
		t.Errorf("CountFor = %d, want 3", n)
	}
}
