package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RunLock is a named lock backed by a row in run_locks. It works on every
// supported backend, unlike Postgres advisory locks which SQLite lacks.
type RunLock struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewRunLock returns a lock whose rows expire after ttl, so a crashed holder
// cannot block runs forever. ttl <= 0 disables expiry.
func NewRunLock(db *gorm.DB, ttl time.Duration) *RunLock {
	return &RunLock{db: db, ttl: ttl, now: time.Now}
}

func (l *RunLock) TryAcquire(ctx context.Context, name string) (func(context.Context) error, bool, error) {
	holder := uuid.NewString()
	now := l.now().UTC()
	acquired := false

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if l.ttl > 0 {
			err := tx.Where("name = ? AND acquired_at < ?", name, now.Add(-l.ttl)).
				Delete(&runLockModel{}).Error
			if err != nil {
				return err
			}
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&runLockModel{Name: name, Holder: holder, AcquiredAt: now})
		if result.Error != nil {
			return result.Error
		}
		acquired = result.RowsAffected == 1
		return nil
	})
	if err != nil || !acquired {
		return nil, false, err
	}

	release := func(ctx context.Context) error {
		return l.db.WithContext(ctx).
			Where("name = ? AND holder = ?", name, holder).
			Delete(&runLockModel{}).Error
	}
	return release, true, nil
}
