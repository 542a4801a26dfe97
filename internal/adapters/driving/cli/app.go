package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/all-black-493/supportly/internal/adapters/driven/config/file"
	"github.com/all-black-493/supportly/internal/adapters/driven/embedding"
	"github.com/all-black-493/supportly/internal/adapters/driven/storage/filesystem"
	"github.com/all-black-493/supportly/internal/adapters/driven/storage/memory"
	"github.com/all-black-493/supportly/internal/adapters/driven/storage/sqlite"
	"github.com/all-black-493/supportly/internal/adapters/driven/vector/chromem"
	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
	"github.com/all-black-493/supportly/internal/core/services"
	"github.com/all-black-493/supportly/internal/logger"
	"github.com/all-black-493/supportly/internal/normalisers/docx"
	"github.com/all-black-493/supportly/internal/normalisers/html"
	"github.com/all-black-493/supportly/internal/normalisers/markdown"
	"github.com/all-black-493/supportly/internal/normalisers/pdf"
	"github.com/all-black-493/supportly/internal/normalisers/plaintext"
	"github.com/all-black-493/supportly/internal/postprocessors"
)

// app holds the wired adapters and services of one command invocation.
type app struct {
	config   *file.ConfigStore
	settings *services.SettingsService
	cfg      *domain.AppSettings

	entries   driven.EntryStore
	blobs     driven.BlobStore
	index     *chromem.Index
	embedder  driven.EmbeddingService
	ingestion *services.IngestionService
	retrieval *services.RetrievalService
	lifecycle *services.LifecycleService

	closers []func() error
}

// loadSettings opens the config store without touching storage.
func loadSettings() (*file.ConfigStore, *services.SettingsService, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return store, services.NewSettingsService(store), nil
}

// openApp wires every adapter from the current settings. With ephemeral
// set, entries, blobs and vectors live in memory only.
func openApp(ctx context.Context, ephemeral bool) (*app, error) {
	store, settingsSvc, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if err := settingsSvc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", store.Path(), err)
	}
	cfg, err := settingsSvc.Get()
	if err != nil {
		return nil, err
	}

	a := &app{config: store, settings: settingsSvc, cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			a.Close() //nolint:errcheck
		}
	}()

	a.embedder, err = embedding.CreateAndValidateEmbeddingService(ctx, cfg.Embedding)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.embedder.Close)
	logger.Debug("embedding: %s (%d dimensions)", a.embedder.ModelName(), a.embedder.Dimensions())

	if ephemeral {
		a.entries = memory.NewEntryStore()
		a.blobs = memory.NewBlobStore(cfg.Server.BaseURL)
		a.index = chromem.NewIndex(a.embedder.Dimensions())
		logger.Warn("ephemeral mode: nothing is persisted")
	} else if err := a.openStorage(resolveDataDir(cfg)); err != nil {
		return nil, err
	}

	pipeline, err := postprocessors.NewDefaultPipeline(cfg.Chunker)
	if err != nil {
		return nil, fmt.Errorf("building chunk pipeline: %w", err)
	}

	registry := services.NewNormaliserRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
	)
	if err := pdf.CheckAvailable(); err == nil {
		registry.Register(pdf.New())
	} else {
		logger.Debug("pdf extraction disabled: %v", err)
	}

	retry := services.NewRetryPolicy(cfg.Ingest)
	inflight := services.NewInFlight()
	indexer := services.NewIndexer(pipeline, a.embedder, a.index, retry)

	a.ingestion = services.NewIngestionService(a.entries, a.blobs, registry, indexer, a.index, inflight, cfg.Ingest)
	a.retrieval = services.NewRetrievalService(a.embedder, a.index, a.entries, a.blobs, retry)
	a.lifecycle = services.NewLifecycleService(a.entries, a.index, a.blobs, inflight)

	ok = true
	return a, nil
}

func (a *app) openStorage(dir string) error {
	db, err := sqlite.NewStore(dir)
	if err != nil {
		return fmt.Errorf("opening entry store: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	a.entries = db.EntryStore()
	logger.Debug("entries: %s", db.Path())

	a.blobs, err = filesystem.NewBlobStore(filepath.Join(dir, "files"), a.cfg.Server.BaseURL)
	if err != nil {
		return err
	}

	a.index, err = chromem.NewPersistentIndex(filepath.Join(dir, "vectors"), a.embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("opening chunk index: %w", err)
	}
	return nil
}

// Close releases everything openApp acquired, in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func resolveDataDir(cfg *domain.AppSettings) string {
	switch {
	case dataDir != "":
		return dataDir
	case cfg.Storage.DataDir != "":
		return cfg.Storage.DataDir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".supportly", "data")
	}
	return filepath.Join(".supportly", "data")
}

// cliTenant builds the tenant for a --namespace flag.
func cliTenant(namespace string) (domain.Tenant, error) {
	if namespace == "" {
		return domain.Tenant{}, errors.New("--namespace is required")
	}
	return domain.TenantFromIdentity(&domain.Identity{Subject: "cli", OrgID: namespace})
}
