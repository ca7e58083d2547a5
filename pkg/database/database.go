package database

import (
	"fmt"
	"time"

	"exam_site_backend/internal/config"
	"exam_site_backend/internal/model"
	"exam_site_backend/internal/util"
	applog "exam_site_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN 按驱动拼接连接串
func DSN(cfg *config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case util.DriverMySQL, "":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		), nil
	case util.DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.Port,
			cfg.SSLMode,
		), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func Open(driver, dsn string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case util.DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		dialector = mysql.Open(dsn)
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	// TranslateError 让唯一索引冲突以 gorm.ErrDuplicatedKey 返回
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
}

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn, err := DSN(&cfg.Database)
	if err != nil {
		return nil, err
	}

	db, err := Open(cfg.Database.Driver, dsn, cfg.Server.Mode == "debug")
	if err != nil {
		return nil, err
	}

	applog.Log.Info("Database connection established", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

// Migrate 建表或补齐字段
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Exam{},
		&model.Question{},
		&model.QuestionVariant{},
		&model.Attempt{},
		&model.RecordedQuestion{},
		&model.RecordedSelection{},
	)
	if err != nil {
		return err
	}
	applog.Log.Info("Database migration completed")
	return nil
}
