package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chatroom-service/internal/models"
)

type FileRepositoryMock struct {
	mock.Mock
}

func (m *FileRepositoryMock) Create(ctx context.Context, rec models.FileRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *FileRepositoryMock) List(ctx context.Context, category string) ([]models.FileRecord, error) {
	args := m.Called(ctx, category)
	var recs []models.FileRecord
	if val := args.Get(0); val != nil {
		recs = val.([]models.FileRecord)
	}
	return recs, args.Error(1)
}

func (m *FileRepositoryMock) Search(ctx context.Context, query string) ([]models.FileRecord, error) {
	args := m.Called(ctx, query)
	var recs []models.FileRecord
	if val := args.Get(0); val != nil {
		recs = val.([]models.FileRecord)
	}
	return recs, args.Error(1)
}

func (m *FileRepositoryMock) Get(ctx context.Context, id string) (models.FileRecord, error) {
	args := m.Called(ctx, id)
	var rec models.FileRecord
	if val := args.Get(0); val != nil {
		rec = val.(models.FileRecord)
	}
	return rec, args.Error(1)
}

func (m *FileRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *FileRepositoryMock) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var categories []string
	if val := args.Get(0); val != nil {
		categories = val.([]string)
	}
	return categories, args.Error(1)
}

type SettingsStoreMock struct {
	mock.Mock
}

func (m *SettingsStoreMock) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *SettingsStoreMock) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *SettingsStoreMock) RoomPassword(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *SettingsStoreMock) DeletePassword(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *SettingsStoreMock) AdminPassword(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *SettingsStoreMock) SiteEnabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *SettingsStoreMock) Announcement(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
