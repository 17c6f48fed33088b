package domain

// PresenceRecord is the durable last-known online state of an identity.
// It mirrors the live registry but survives restarts; live routing never
// reads it, only the snapshot broadcasts and the REST listing do.
type PresenceRecord struct {
	IdentityID       IdentityID `gorm:"primaryKey" json:"userId"`
	ConnectionHandle string     `json:"-"`
	Online           bool       `json:"online"`
	DisplayName      string     `json:"fullName"`
	CameraOn         bool       `json:"cameraOn"`
	AudioOn          bool       `json:"audioOn"`
	LastSeen         int64      `json:"lastSeen"` // unix seconds, zero until first disconnect
}

func (PresenceRecord) TableName() string { return "presence" }
