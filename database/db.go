package database

import (
	"fmt"
	"log"

	"github.com/Angel-Soto43/AzalMechanicalSupport/config"
	"github.com/Angel-Soto43/AzalMechanicalSupport/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB
var RedisClient *redis.Client

func InitPostgres(cfg *config.DatabaseConfig) error {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, cfg.SSLMode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return fmt.Errorf("connect database failed: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("get database handle failed: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	log.Println("postgres connected")
	return nil
}

// Migrate creates the schema plus the partial unique index that keeps a
// contract id unique among non-deleted files. The application pre-checks the
// same condition, but only this index closes the race between concurrent
// uploads.
func Migrate() error {
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.File{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	return DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_files_active_contract
		 ON files (contract_id) WHERE deleted_at IS NULL`,
	).Error
}

func InitRedis(cfg *config.RedisConfig) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	log.Println("redis client initialized")
	return nil
}
