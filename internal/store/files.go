package store

import (
	"gorm.io/gorm"

	"github.com/huddlekit/huddle/internal/domain"
)

// Files is the shared-file ledger. Retention is bounded: the ledger never
// keeps more than max descriptors, oldest evicted first.
type Files struct {
	db  *gorm.DB
	max int
}

func NewFiles(db *gorm.DB, max int) *Files {
	return &Files{db: db, max: max}
}

func (s *Files) Max() int { return s.max }

// RecordAndTrim inserts the descriptor and trims everything beyond the max
// newest rows, all inside one transaction so a reader never observes the
// ledger over capacity. Evicted rows are returned so the caller can delete
// their backing blobs.
func (s *Files) RecordAndTrim(fd *domain.FileDescriptor) ([]domain.FileDescriptor, error) {
	var evicted []domain.FileDescriptor
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(fd).Error; err != nil {
			return err
		}
		var all []domain.FileDescriptor
		if err := tx.Order("id DESC").Find(&all).Error; err != nil {
			return err
		}
		if len(all) <= s.max {
			return nil
		}
		evicted = all[s.max:]
		ids := make([]int64, 0, len(evicted))
		for _, old := range evicted {
			ids = append(ids, old.ID)
		}
		return tx.Delete(&domain.FileDescriptor{}, ids).Error
	})
	if err != nil {
		return nil, err
	}
	return evicted, nil
}

// List returns descriptors newest-first, capped at limit (and never more
// than the retention max).
func (s *Files) List(limit int) ([]domain.FileDescriptor, error) {
	if limit <= 0 || limit > s.max {
		limit = s.max
	}
	out := []domain.FileDescriptor{}
	err := s.db.Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Files) Get(id int64) (*domain.FileDescriptor, bool) {
	var fd domain.FileDescriptor
	if err := s.db.First(&fd, "id = ?", id).Error; err != nil {
		return nil, false
	}
	return &fd, true
}
