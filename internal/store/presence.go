package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/huddlekit/huddle/internal/domain"
)

// Presence persists the last-known online state per identity.
// At most one row per identity; the row always reflects the identity's
// most recent connection handle.
type Presence struct {
	db *gorm.DB
}

func NewPresence(db *gorm.DB) *Presence {
	return &Presence{db: db}
}

// UpsertOnline records a fresh session: online, media flags reset.
func (s *Presence) UpsertOnline(id domain.IdentityID, handle, displayName string) error {
	rec := domain.PresenceRecord{
		IdentityID:       id,
		ConnectionHandle: handle,
		Online:           true,
		DisplayName:      displayName,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"connection_handle", "online", "display_name", "camera_on", "audio_on",
		}),
	}).Create(&rec).Error
}

func (s *Presence) UpdateMedia(id domain.IdentityID, cameraOn, audioOn bool) error {
	return s.db.Model(&domain.PresenceRecord{}).
		Where("identity_id = ?", id).
		Updates(map[string]any{"camera_on": cameraOn, "audio_on": audioOn}).Error
}

// MarkOffline flips the row to offline, but only if it still belongs to the
// given connection handle. A disconnect of a stale handle must not shadow a
// newer session of the same identity.
func (s *Presence) MarkOffline(id domain.IdentityID, handle string, at time.Time) error {
	return s.db.Model(&domain.PresenceRecord{}).
		Where("identity_id = ? AND connection_handle = ?", id, handle).
		Updates(map[string]any{"online": false, "last_seen": at.Unix()}).Error
}

// MarkAllOffline is run at startup: nobody holds a live connection to a
// process that just booted.
func (s *Presence) MarkAllOffline(at time.Time) error {
	return s.db.Model(&domain.PresenceRecord{}).
		Where("online = ?", true).
		Updates(map[string]any{"online": false, "last_seen": at.Unix()}).Error
}

func (s *Presence) ListOnline() ([]domain.PresenceRecord, error) {
	out := []domain.PresenceRecord{}
	err := s.db.Where("online = ?", true).Order("display_name").Find(&out).Error
	return out, err
}

func (s *Presence) Get(id domain.IdentityID) (*domain.PresenceRecord, bool) {
	var rec domain.PresenceRecord
	if err := s.db.First(&rec, "identity_id = ?", id).Error; err != nil {
		return nil, false
	}
	return &rec, true
}
