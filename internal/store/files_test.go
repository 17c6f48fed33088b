package store

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddlekit/huddle/internal/domain"
)

func descriptor(n int) *domain.FileDescriptor {
	return &domain.FileDescriptor{
		StoredName:          fmt.Sprintf("stored-%02d", n),
		OriginalName:        fmt.Sprintf("doc-%02d.txt", n),
		SizeBytes:           7,
		UploaderID:          "1",
		UploaderDisplayName: "Alice",
		UploadedAt:          int64(1700000000 + n),
	}
}

func TestRecordAndTrimKeepsNewest(t *testing.T) {
	ledger := NewFiles(openTestDB(t), 3)

	for n := 1; n <= 3; n++ {
		evicted, err := ledger.RecordAndTrim(descriptor(n))
		require.NoError(t, err)
		assert.Empty(t, evicted)
	}

	evicted, err := ledger.RecordAndTrim(descriptor(4))
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, "doc-01.txt", evicted[0].OriginalName)

	files, err := ledger.List(0)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "doc-04.txt", files[0].OriginalName)
	assert.Equal(t, "doc-02.txt", files[2].OriginalName)
}

func TestTrimEvictsSeveralAtOnce(t *testing.T) {
	// Capacity shrank between runs: one insert may evict more than one row.
	db := openTestDB(t)
	wide := NewFiles(db, 5)
	for n := 1; n <= 5; n++ {
		_, err := wide.RecordAndTrim(descriptor(n))
		require.NoError(t, err)
	}

	narrow := NewFiles(db, 2)
	evicted, err := narrow.RecordAndTrim(descriptor(6))
	require.NoError(t, err)
	assert.Len(t, evicted, 4)

	files, err := narrow.List(0)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "doc-06.txt", files[0].OriginalName)
	assert.Equal(t, "doc-05.txt", files[1].OriginalName)
}

func TestGet(t *testing.T) {
	ledger := NewFiles(openTestDB(t), 3)
	_, err := ledger.RecordAndTrim(descriptor(1))
	require.NoError(t, err)

	files, err := ledger.List(0)
	require.NoError(t, err)
	require.Len(t, files, 1)

	fd, ok := ledger.Get(files[0].ID)
	require.True(t, ok)
	assert.Equal(t, "doc-01.txt", fd.OriginalName)

	_, ok = ledger.Get(9999)
	assert.False(t, ok)
}

func TestBlobsSaveAndIdempotentRemove(t *testing.T) {
	blobs, err := NewBlobs(t.TempDir())
	require.NoError(t, err)

	storedName, size, err := blobs.Save("report.pdf", strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), size)
	assert.True(t, strings.HasSuffix(storedName, ".pdf"))

	data, err := os.ReadFile(blobs.Path(storedName))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	require.NoError(t, blobs.Remove(storedName))
	// Second removal of the same blob must not fail.
	require.NoError(t, blobs.Remove(storedName))
	require.NoError(t, blobs.Remove("never-existed"))
}
