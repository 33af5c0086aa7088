package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"inventory-intake-backend/db/models"
	ingestion_services "inventory-intake-backend/ingestion/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUploadLogRepo struct {
	createErr error
	entry     *models.UploadLogEntry
}

func (f *fakeUploadLogRepo) CreateUploadLogEntry(_ context.Context, entry *models.UploadLogEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.entry = entry
	return nil
}

func (f *fakeUploadLogRepo) GetUploadLogEntries(_ context.Context, _ uuid.UUID, _ int, _ int) ([]models.UploadLogEntry, int64, error) {
	return nil, 0, nil
}

func TestLogAttemptWritesEntry(t *testing.T) {
	repo := &fakeUploadLogRepo{}
	recorder := NewRecorder(repo, zap.NewNop())

	ownerScope := uuid.New()
	lotID := uuid.New()
	rowErrors := []ingestion_services.UploadRowError{
		{RowNumber: 4, SKU: "X-4", Message: "SKU already exists"},
	}

	err := recorder.LogAttempt(context.Background(), ownerScope, "importer@example.com", "stock.csv",
		AttemptTotals{TotalRows: 10, SuccessCount: 9, ErrorCount: 1}, rowErrors, &lotID)

	require.NoError(t, err)
	require.NotNil(t, repo.entry)
	assert.Equal(t, ownerScope, repo.entry.OwnerScope)
	assert.Equal(t, "stock.csv", repo.entry.FileName)
	assert.Equal(t, "importer@example.com", repo.entry.Actor)
	assert.Equal(t, 10, repo.entry.TotalRows)
	assert.Equal(t, 9, repo.entry.SuccessCount)
	assert.Equal(t, 1, repo.entry.ErrorCount)
	require.NotNil(t, repo.entry.LotID)
	assert.Equal(t, lotID, *repo.entry.LotID)

	var stored []ingestion_services.UploadRowError
	require.NoError(t, json.Unmarshal(repo.entry.Errors, &stored))
	assert.Equal(t, rowErrors, stored)
}

func TestLogAttemptWithoutLotOrErrors(t *testing.T) {
	repo := &fakeUploadLogRepo{}
	recorder := NewRecorder(repo, zap.NewNop())

	err := recorder.LogAttempt(context.Background(), uuid.New(), "importer@example.com", "stock.csv",
		AttemptTotals{TotalRows: 0, SuccessCount: 0, ErrorCount: 0}, nil, nil)

	require.NoError(t, err)
	require.NotNil(t, repo.entry)
	assert.Nil(t, repo.entry.LotID)
	assert.Equal(t, "null", string(repo.entry.Errors))
}

func TestLogAttemptSurfacesRepoError(t *testing.T) {
	repo := &fakeUploadLogRepo{createErr: errors.New("insert failed")}
	recorder := NewRecorder(repo, zap.NewNop())

	err := recorder.LogAttempt(context.Background(), uuid.New(), "importer@example.com", "stock.csv",
		AttemptTotals{TotalRows: 1, SuccessCount: 1}, nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert failed")
}
