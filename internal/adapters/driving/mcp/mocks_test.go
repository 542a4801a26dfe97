package mcp

import (
	"context"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driving"
)

var testTenant = domain.Tenant{Namespace: "org_A", Subject: "agent"}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error

	gotTenant domain.Tenant
	gotQuery  string
	gotTopK   int
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	tenant domain.Tenant,
	query string,
	topK int,
) ([]domain.RetrievalResult, error) {
	m.gotTenant, m.gotQuery, m.gotTopK = tenant, query, topK
	return m.results, m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	result *domain.IngestResult
	err    error
	got    driving.UploadRequest
}

func (m *mockIngestionService) AddDocument(
	_ context.Context,
	_ domain.Tenant,
	req driving.UploadRequest,
) (*domain.IngestResult, error) {
	m.got = req
	return m.result, m.err
}

// mockLifecycleService is a mock implementation of driving.LifecycleService.
type mockLifecycleService struct {
	entries []domain.Entry
	entry   *domain.Entry
	err     error
	deleted []string
}

func (m *mockLifecycleService) GetEntry(_ context.Context, _ domain.Tenant, _ string) (*domain.Entry, error) {
	return m.entry, m.err
}

func (m *mockLifecycleService) ListEntries(_ context.Context, _ domain.Tenant) ([]domain.Entry, error) {
	return m.entries, m.err
}

func (m *mockLifecycleService) DeleteEntry(_ context.Context, _ domain.Tenant, entryID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, entryID)
	return nil
}

func (m *mockLifecycleService) Reconcile(_ context.Context, _ domain.Namespace) (int, error) {
	return 0, m.err
}
