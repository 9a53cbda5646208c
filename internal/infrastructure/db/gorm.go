package db

import (
	"time"

	"loantrack/internal/domain/application"
	"loantrack/internal/domain/decision"
	"loantrack/internal/domain/identity"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenGorm(dsn string, log *zap.Logger) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), log)
}

// OpenSQLite serves local runs and tests. sqlite has a single writer, and
// every ":memory:" connection is its own database, so the pool holds one connection.
func OpenSQLite(path string, log *zap.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), gormConfig(log))
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return gdb, nil
}

func OpenGormWithDialector(dial gorm.Dialector, log *zap.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(dial, gormConfig(log))
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Info("gorm: connected", zap.String("dialect", dial.Name()))
	return gdb, nil
}

func gormConfig(log *zap.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
		// Open* ping after the pool is tuned
		DisableAutomaticPing: true,
	}
}

// Migrate creates or updates the schema for every persisted entity.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&identity.User{},
		&application.LoanApplication{},
		&decision.Decision{},
	)
}
