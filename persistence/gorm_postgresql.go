// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/slotserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.PlayerRecord{}, &models.SpinRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) LoadPlayer(name string) (models.PlayerRecord, error) {
	var record models.PlayerRecord
	err := p.db.Where("name = ?", name).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PlayerRecord{}, ErrRecordNotFound
		}
		return models.PlayerRecord{}, err
	}
	return record, nil
}

// SavePlayer upserts by player name inside one transaction.
func (p *GormPostgreSQL) SavePlayer(record models.PlayerRecord) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PlayerRecord
		err := tx.Where("name = ?", record.Name).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&record).Error
		} else if err != nil {
			return err
		}

		existing.Balance = record.Balance
		existing.TotalWinnings = record.TotalWinnings
		existing.Avatar = record.Avatar
		existing.UpdatedAt = time.Now()
		return tx.Save(&existing).Error
	})
}

func (p *GormPostgreSQL) SaveSpinRecord(record models.SpinRecord) error {
	return p.db.Create(&record).Error
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
