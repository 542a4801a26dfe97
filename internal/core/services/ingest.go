package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
	"github.com/all-black-493/supportly/internal/core/ports/driving"
	"github.com/all-black-493/supportly/internal/fingerprint"
	"github.com/all-black-493/supportly/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService turns uploads into committed entries.
type IngestionService struct {
	entries     driven.EntryStore
	blobs       driven.BlobStore
	normalisers driven.NormaliserRegistry
	indexer     *Indexer
	index       driven.ChunkIndex
	inflight    *InFlight

	maxBytes int64
	retry    RetryPolicy
	group    singleflight.Group

	now   func() time.Time
	newID func() string
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(
	entries driven.EntryStore,
	blobs driven.BlobStore,
	normalisers driven.NormaliserRegistry,
	indexer *Indexer,
	index driven.ChunkIndex,
	inflight *InFlight,
	settings domain.IngestSettings,
) *IngestionService {
	return &IngestionService{
		entries:     entries,
		blobs:       blobs,
		normalisers: normalisers,
		indexer:     indexer,
		index:       index,
		inflight:    inflight,
		maxBytes:    settings.MaxBytes,
		retry:       NewRetryPolicy(settings),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// upload is a validated, fingerprinted request.
type upload struct {
	ns       domain.Namespace
	filename string
	category string
	mimeType string
	hash     string
	content  []byte
}

// AddDocument ingests one upload. Identical content already present in the
// namespace is returned with Created=false, and concurrent identical uploads
// are coalesced so only one of them does the work.
func (s *IngestionService) AddDocument(ctx context.Context, tenant domain.Tenant, req driving.UploadRequest) (*domain.IngestResult, error) {
	if !tenant.Resolved() {
		return nil, fmt.Errorf("%w: no tenant", domain.ErrUnauthorized)
	}
	if err := tenant.Namespace.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: content is empty", domain.ErrInvalidInput)
	}
	if s.maxBytes > 0 && int64(len(req.Content)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", domain.ErrInvalidInput, len(req.Content), s.maxBytes)
	}

	hash, mimeType := fingerprint.Fingerprint(filename, req.Content)
	if supplied := fingerprint.Canonical(req.MIMEType); supplied != "" {
		mimeType = supplied
	}

	u := upload{
		ns:       tenant.Namespace,
		filename: filename,
		category: strings.TrimSpace(req.Category),
		mimeType: mimeType,
		hash:     hash,
		content:  req.Content,
	}

	key := string(u.ns) + "\x00" + hash
	for {
		leader := false
		v, err, _ := s.group.Do(key, func() (any, error) {
			leader = true
			return s.ingest(ctx, u)
		})
		if err != nil {
			// The shared call ran on the leader's context. A follower whose own
			// context is live must not inherit its cancellation.
			if !leader && ctx.Err() == nil && isContextErr(err) {
				logger.Debug("ingest of %s in %s: leader cancelled, retrying", hash[:12], u.ns)
				s.group.Forget(key)
				continue
			}
			return nil, err
		}

		result := *v.(*domain.IngestResult)
		if !leader {
			result.Created = false
		}
		return &result, nil
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *IngestionService) ingest(ctx context.Context, u upload) (*domain.IngestResult, error) {
	existing, err := s.entries.FindByHash(ctx, u.ns, u.hash)
	switch {
	case err == nil:
		logger.Debug("content %s already present in %s as entry %s", u.hash[:12], u.ns, existing.ID)
		return s.existingResult(ctx, existing)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup hash: %w", err)
	}

	storageID, err := retryValue(ctx, s.retry, "store blob", func(ctx context.Context) (string, error) {
		return s.blobs.Store(ctx, u.ns, u.content, u.mimeType)
	})
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	entryID := s.newID()
	s.inflight.add(entryID)
	defer s.inflight.done(entryID)

	entry, err := s.build(ctx, u, entryID, storageID)
	if err != nil {
		s.cleanup(ctx, u.ns, entryID, storageID)
		return nil, err
	}

	committed, err := s.entries.CreateEntry(ctx, entry)
	if errors.Is(err, domain.ErrAlreadyExists) && committed != nil {
		logger.Debug("entry %s lost the commit race to %s", entryID, committed.ID)
		s.cleanup(ctx, u.ns, entryID, storageID)
		return s.existingResult(ctx, committed)
	}
	if err != nil {
		s.cleanup(ctx, u.ns, entryID, storageID)
		return nil, fmt.Errorf("commit entry: %w", err)
	}

	result := &domain.IngestResult{EntryID: committed.ID, Created: true}
	if url, err := s.blobs.URL(ctx, storageID); err == nil {
		result.URL = url
	} else {
		logger.Warn("ingest: url for blob %s of entry %s: %v", storageID, committed.ID, err)
	}

	logger.Info("ingested %q into %s as entry %s (%d chunks)", u.filename, u.ns, committed.ID, committed.ChunkCount)
	return result, nil
}

// build extracts and indexes the upload and returns the entry to commit.
func (s *IngestionService) build(ctx context.Context, u upload, entryID, storageID string) (*domain.Entry, error) {
	raw := &domain.RawDocument{
		Filename: u.filename,
		MIMEType: u.mimeType,
		Content:  u.content,
	}
	extracted, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", u.filename, err)
	}

	count, err := s.indexer.Index(ctx, u.ns, entryID, extracted.Document.Content)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		domain.MetaStorageID:  storageID,
		domain.MetaUploadedBy: string(u.ns),
		domain.MetaFilename:   u.filename,
	}
	if u.category != "" {
		metadata[domain.MetaCategory] = u.category
	}

	return &domain.Entry{
		ID:          entryID,
		Namespace:   u.ns,
		Key:         u.filename,
		Title:       extracted.Document.Title,
		ContentHash: u.hash,
		MIMEType:    u.mimeType,
		Size:        int64(len(u.content)),
		ChunkCount:  count,
		Metadata:    metadata,
		CreatedAt:   s.now().UTC(),
	}, nil
}

func (s *IngestionService) existingResult(ctx context.Context, entry *domain.Entry) (*domain.IngestResult, error) {
	result := &domain.IngestResult{EntryID: entry.ID, Created: false}
	if id := entry.StorageID(); id != "" {
		if url, err := s.blobs.URL(ctx, id); err == nil {
			result.URL = url
		} else {
			logger.Warn("ingest: url for blob %s of entry %s: %v", id, entry.ID, err)
		}
	}
	return result, nil
}

// cleanup removes the chunks and blob of an uncommitted entry. It runs even
// when ctx is cancelled and retries transient failures. Chunks that still
// survive are left to reconcile.
func (s *IngestionService) cleanup(ctx context.Context, ns domain.Namespace, entryID, storageID string) {
	ctx = context.WithoutCancel(ctx)

	err := s.retry.Do(ctx, "cleanup chunks", func(ctx context.Context) error {
		return s.index.DeleteEntry(ctx, ns, entryID)
	})
	if err != nil {
		logger.Warn("cleanup: delete chunks of %s in %s: %v", entryID, ns, err)
	}
	err = s.retry.Do(ctx, "cleanup blob", func(ctx context.Context) error {
		return s.blobs.Delete(ctx, storageID)
	})
	if err != nil {
		logger.Warn("cleanup: delete blob %s: %v", storageID, err)
	}
}
