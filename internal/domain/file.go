package domain

// FileDescriptor represents a user-shared file kept by the bounded ledger.
// The auto-increment id doubles as upload order: higher id means newer.
type FileDescriptor struct {
	ID                  int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	StoredName          string     `json:"-"`
	OriginalName        string     `json:"name"`
	SizeBytes           int64      `json:"size"`
	UploaderID          IdentityID `json:"uploaderId"`
	UploaderDisplayName string     `json:"uploaderName"`
	UploadedAt          int64      `json:"uploadedAt"` // unix seconds
}

func (FileDescriptor) TableName() string { return "shared_files" }
