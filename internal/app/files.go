package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/huddlekit/huddle/internal/domain"
)

// FileLedger is the durable bounded list of shared-file descriptors.
type FileLedger interface {
	RecordAndTrim(fd *domain.FileDescriptor) ([]domain.FileDescriptor, error)
	List(limit int) ([]domain.FileDescriptor, error)
	Get(id int64) (*domain.FileDescriptor, bool)
	Max() int
}

// BlobRemover deletes the stored object behind an evicted descriptor.
type BlobRemover interface {
	Remove(storedName string) error
}

// Broadcaster pushes a frame to every live connection. Satisfied by *Hub.
type Broadcaster interface {
	Broadcast(v any)
}

// FileService ties the ledger, the blob store and the broadcast channel
// together: record, evict, announce. The whole sequence runs under one
// mutex so concurrent uploads cannot interleave their trims.
type FileService struct {
	mu     sync.Mutex
	ledger FileLedger
	blobs  BlobRemover
	bcast  Broadcaster
}

func NewFileService(ledger FileLedger, blobs BlobRemover, bcast Broadcaster) *FileService {
	return &FileService{ledger: ledger, blobs: blobs, bcast: bcast}
}

// Record inserts the descriptor, deletes the blobs of anything the ledger
// evicted and broadcasts the surviving list. A blob that fails to delete is
// logged and forgotten; it never fails the upload or blocks the broadcast.
func (s *FileService) Record(fd *domain.FileDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted, err := s.ledger.RecordAndTrim(fd)
	if err != nil {
		return err
	}
	for _, old := range evicted {
		if err := s.blobs.Remove(old.StoredName); err != nil {
			log.Warn().Err(err).Str("module", "app.files").Str("stored", old.StoredName).Msg("evicted blob removal failed")
		} else {
			log.Info().Str("module", "app.files").Int64("id", old.ID).Str("name", old.OriginalName).Msg("evicted shared file")
		}
	}
	files, err := s.ledger.List(s.ledger.Max())
	if err != nil {
		return err
	}
	s.bcast.Broadcast(struct {
		Type  string                  `json:"type"`
		Files []domain.FileDescriptor `json:"files"`
	}{"files-updated", files})
	return nil
}

func (s *FileService) List(limit int) ([]domain.FileDescriptor, error) {
	return s.ledger.List(limit)
}

func (s *FileService) Get(id int64) (*domain.FileDescriptor, bool) {
	return s.ledger.Get(id)
}
