package storage

import (
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"netmock/internal/logger"
)

// Record is one journaled resolution outcome.
type Record struct {
	ID        string `gorm:"primaryKey;size:36"`
	SessionID string `gorm:"index;size:36"`
	URL       string
	Method    string
	Rule      string `gorm:"index"`
	Result    string // resolved | passed | rejected
	Status    int
	CreatedAt time.Time
}

// Journal persists resolution outcomes for post-test inspection.
type Journal struct {
	db *gorm.DB
}

// Open opens (or creates) the journal at dsn. Use ":memory:" for an
// ephemeral journal.
func Open(dsn, prefix string, l logger.Logger) (*Journal, error) {
	if l == nil {
		l = logger.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         NewGormLogger(l),
		NamingStrategy: schema.NamingStrategy{TablePrefix: prefix},
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Append writes one record, assigning an ID when absent.
func (j *Journal) Append(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return j.db.Create(rec).Error
}

// BySession returns a session's records, oldest first.
func (j *Journal) BySession(id string) ([]Record, error) {
	var out []Record
	err := j.db.Where("session_id = ?", id).Order("created_at").Find(&out).Error
	return out, err
}

// Recent returns the newest records, newest first.
func (j *Journal) Recent(limit int) ([]Record, error) {
	var out []Record
	err := j.db.Order("created_at desc").Limit(limit).Find(&out).Error
	return out, err
}

// Count reports the number of journaled records.
func (j *Journal) Count() (int64, error) {
	var n int64
	err := j.db.Model(&Record{}).Count(&n).Error
	return n, err
}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
