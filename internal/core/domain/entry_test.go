package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestEntry_Fields tests Entry structure fields
func TestEntry_Fields(t *testing.T) {
	now := time.Now()

	entry := Entry{
		ID:          "entry-123",
		Namespace:   "org_A",
		Key:         "faq.pdf",
		Title:       "FAQ",
		ContentHash: "abc",
		MIMEType:    "application/pdf",
		Size:        42,
		ChunkCount:  3,
		Metadata: map[string]string{
			MetaStorageID:  "blob-1",
			MetaUploadedBy: "org_A",
			MetaFilename:   "faq.pdf",
		},
		CreatedAt: now,
	}

	assert.Equal(t, "blob-1", entry.StorageID())
	assert.Equal(t, "org_A", entry.UploadedBy())
	assert.Equal(t, Namespace("org_A"), entry.Namespace)
	assert.Equal(t, now, entry.CreatedAt)
}

func TestEntry_MissingMetadata(t *testing.T) {
	entry := Entry{ID: "entry-1"}

	assert.Empty(t, entry.StorageID())
	assert.Empty(t, entry.UploadedBy())
}
