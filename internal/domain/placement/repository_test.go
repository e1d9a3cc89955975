package placement

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	db := sqlx.NewDb(mockDB, "sqlmock")
	return db, mock, func() { db.Close() }
}

func sampleRows(placements ...Placement) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "name", "slot", "type", "format", "location",
		"is_enabled", "position", "responsive", "custom_code",
		"created_at", "updated_at",
	})
	for _, p := range placements {
		rows.AddRow(p.ID, p.Name, p.Slot, p.Type, p.Format, p.Location,
			p.IsEnabled, p.Position, p.Responsive, p.CustomCode,
			p.CreatedAt, p.UpdatedAt)
	}
	return rows
}

func TestRepository_ListByType(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	enabled := Placement{ID: uuid.New(), Name: "Footer A", Slot: "1111", Type: TypeFooter,
		Format: FormatAuto, Location: LocationAllPages, IsEnabled: true, Responsive: true,
		CreatedAt: now, UpdatedAt: now}
	disabled := Placement{ID: uuid.New(), Name: "Footer B", Slot: "2222", Type: TypeFooter,
		Format: FormatHorizontal, Location: LocationBlog, IsEnabled: false, Responsive: true,
		CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("(?s)SELECT .+ FROM ad_placements\\s+WHERE type = \\$1").
		WithArgs(TypeFooter).
		WillReturnRows(sampleRows(enabled, disabled))

	repo := NewRepository(db)
	got, err := repo.ListByType(context.Background(), TypeFooter)
	if err != nil {
		t.Fatalf("ListByType() error: %v", err)
	}

	// enablement is the caller's concern, both rows come back
	if len(got) != 2 {
		t.Fatalf("ListByType() returned %d placements, want 2", len(got))
	}
	for _, p := range got {
		if p.Type != TypeFooter {
			t.Errorf("ListByType() returned type %q, want %q", p.Type, TypeFooter)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectQuery("(?s)SELECT .+ FROM ad_placements\\s+WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sampleRows())

	repo := NewRepository(db)
	_, err := repo.GetByID(context.Background(), id)
	if err != ErrPlacementNotFound {
		t.Errorf("GetByID() error = %v, want ErrPlacementNotFound", err)
	}
}

func TestRepository_Delete_NotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec("DELETE FROM ad_placements WHERE id = \\$1").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRepository(db)
	err := repo.Delete(context.Background(), id)
	if err != ErrPlacementNotFound {
		t.Errorf("Delete() error = %v, want ErrPlacementNotFound", err)
	}
}

func TestRepository_SetEnabled(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec("UPDATE ad_placements SET is_enabled = \\$2").
		WithArgs(id, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewRepository(db)
	if err := repo.SetEnabled(context.Background(), id, false); err != nil {
		t.Errorf("SetEnabled() error: %v", err)
	}
}
