package mysql

import (
	"testing"
	"time"

	"loantrack/internal/domain/application"
	"loantrack/internal/infrastructure/db"
	"loantrack/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func makeApplication(ownerID string, createdAt time.Time) *application.LoanApplication {
	return &application.LoanApplication{
		ApplicationID: id.NewID32(),
		OwnerID:       ownerID,
		Amount:        decimal.RequireFromString("5000.50"),
		TermMonths:    12,
		Purpose:       "working capital",
		Status:        application.StatusPending,
		CreatedAt:     createdAt.UTC(),
	}
}
