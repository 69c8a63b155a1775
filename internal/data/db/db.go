package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/ceustudio-backend/internal/domain"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

type Config struct {
	Driver     string // postgres | sqlite
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

func (c Config) postgresDSN() string {
	ssl := c.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, ssl)
}

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects with the configured driver and migrates the learner tables.
func Open(cfg Config, baseLog *logger.Logger) (*Service, error) {
	serviceLog := baseLog.With("service", "DBService", "driver", cfg.Driver)

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "", "postgres":
		dialector = postgres.Open(cfg.postgresDSN())
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "ceustudio.db"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	if err := AutoMigrateAll(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	serviceLog.Info("database ready")
	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}
