// Package catalog keeps a record of finished video files.
package catalog

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Recording describes one finalized file.
type Recording struct {
	gorm.Model

	Path        string `gorm:"size:1024"`
	Codec       string `gorm:"size:8"`
	Width       int
	Height      int
	FPS         float64
	Frames      uint64
	Dropped     uint64
	DurationSec int
	SizeBytes   int64

	StartedAt  time.Time
	FinishedAt time.Time
}

type Catalog struct {
	db *gorm.DB
}

// Open connects through the given dialector and migrates the schema.
func Open(d gorm.Dialector) (*Catalog, error) {
	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if err := db.AutoMigrate(&Recording{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate catalog")
	}
	return &Catalog{db: db}, nil
}

// OpenMySQL opens the catalog on a MySQL DSN.
func OpenMySQL(dsn string) (*Catalog, error) {
	return Open(mysql.Open(dsn))
}

func (c *Catalog) Add(r *Recording) error {
	return c.db.Create(r).Error
}

// Recent returns up to n recordings, newest first.
func (c *Catalog) Recent(n int) ([]Recording, error) {
	var out []Recording
	err := c.db.Order("finished_at desc").Limit(n).Find(&out).Error
	return out, err
}

func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the recording with the given ID, or nil if there is none.
func (c *Catalog) Get(id uint) (*Recording, error) {
	var r Recording
	err := c.db.First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes the recording and its file.
func (c *Catalog) Delete(r *Recording) error {
	if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", r.Path)
	}
	return c.db.Delete(r).Error
}
