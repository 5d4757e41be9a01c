package repositories

import (
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rohits-web03/marketchat/internal/config"
	"github.com/rohits-web03/marketchat/internal/envelope"
	"github.com/rohits-web03/marketchat/internal/models"
)

// GormStore is the relational Store. Every mutation runs in a single
// transaction.
type GormStore struct {
	db    *gorm.DB
	suite *envelope.Suite
}

// Open connects to the configured database, runs migrations and returns a
// store that seals message text with suite. log may be nil.
func Open(cfg config.DatabaseConfig, suite *envelope.Suite, log *logrus.Logger) (*GormStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.URL)
	case "sqlite":
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, errors.Errorf("unknown database driver %q", cfg.Driver)
	}

	gormLog := gormlogger.Discard
	if log != nil {
		gormLog = gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get underlying db")
	}
	if cfg.Driver == "sqlite" {
		// One connection: sqlite has a single writer, and ":memory:" is per
		// connection.
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	// Run migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Conversation{},
		&models.Message{},
	)
	if err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "migration failed")
	}

	if log != nil {
		log.WithField("driver", cfg.Driver).Info("Successfully connected to database")
	}
	return &GormStore{db: db, suite: suite}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
