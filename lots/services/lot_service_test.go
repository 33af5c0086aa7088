package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"inventory-intake-backend/db/models"
	ingestion_services "inventory-intake-backend/ingestion/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeLotRepo struct {
	nextSeq        int
	seqErr         error
	createFailures []error
	createCalls    int
	createdLot     *models.Lot
	entriesErr     error
	createdEntries []models.LotEntry
	lotByID        *models.Lot
	getLotErr      error
	entries        []models.LotEntry
	getEntriesErr  error
	deleteLotErr   error
	deletedLot     *models.Lot
	seqCalls       int
}

func (f *fakeLotRepo) NextLotSequence(_ context.Context, _ uuid.UUID, _ int) (int, error) {
	f.seqCalls++
	if f.seqErr != nil {
		return 0, f.seqErr
	}
	return f.nextSeq, nil
}

func (f *fakeLotRepo) CreateLot(_ context.Context, lot *models.Lot) error {
	f.createCalls++
	if len(f.createFailures) > 0 {
		err := f.createFailures[0]
		f.createFailures = f.createFailures[1:]
		return err
	}
	lot.ID = uuid.New()
	copied := *lot
	f.createdLot = &copied
	return nil
}

func (f *fakeLotRepo) CreateLotEntries(_ context.Context, entries []models.LotEntry) error {
	if f.entriesErr != nil {
		return f.entriesErr
	}
	f.createdEntries = entries
	return nil
}

func (f *fakeLotRepo) GetLotByID(_ context.Context, _ uuid.UUID) (*models.Lot, error) {
	if f.getLotErr != nil {
		return nil, f.getLotErr
	}
	return f.lotByID, nil
}

func (f *fakeLotRepo) GetLotEntries(_ context.Context, _ uuid.UUID) ([]models.LotEntry, error) {
	if f.getEntriesErr != nil {
		return nil, f.getEntriesErr
	}
	return f.entries, nil
}

func (f *fakeLotRepo) DeleteLot(_ context.Context, lot *models.Lot) error {
	if f.deleteLotErr != nil {
		return f.deleteLotErr
	}
	f.deletedLot = lot
	return nil
}

func (f *fakeLotRepo) GetFilteredLots(_ context.Context, _ uuid.UUID, _ int, _ int, _ map[string]string) ([]models.Lot, int64, error) {
	return nil, 0, nil
}

type fakeProductRemover struct {
	references   int64
	refErr       error
	deleted      int64
	deleteErr    error
	deletedIDs   []uuid.UUID
	checkedIDs   []uuid.UUID
	deleteCalls  int
}

func (f *fakeProductRemover) DeleteProductsByIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	f.deleteCalls++
	f.deletedIDs = ids
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return f.deleted, nil
}

func (f *fakeProductRemover) CountOrderLineReferences(_ context.Context, productIDs []uuid.UUID) (int64, error) {
	f.checkedIDs = productIDs
	if f.refErr != nil {
		return 0, f.refErr
	}
	return f.references, nil
}

func insertedFixture() []ingestion_services.InsertedRecord {
	cost := decimal.RequireFromString("3.50")
	return []ingestion_services.InsertedRecord{
		{ID: uuid.New(), SKU: "A-1", Stock: 2, Cost: &cost, Price: decimal.RequireFromString("10.00"), RowNumber: 1},
		{ID: uuid.New(), SKU: "A-2", Stock: 4, Cost: nil, Price: decimal.RequireFromString("2.50"), RowNumber: 2},
	}
}

func TestCreateLotSkipsEmptyUpload(t *testing.T) {
	repo := &fakeLotRepo{nextSeq: 1}
	service := NewLotService(repo, &fakeProductRemover{}, zap.NewNop())

	lot, err := service.CreateLot(context.Background(), uuid.New(), "tester", "stock.csv", nil)

	require.NoError(t, err)
	assert.Nil(t, lot)
	assert.Equal(t, 0, repo.seqCalls)
}

func TestCreateLotAggregatesTotals(t *testing.T) {
	repo := &fakeLotRepo{nextSeq: 7}
	service := NewLotService(repo, &fakeProductRemover{}, zap.NewNop())

	ownerScope := uuid.New()
	inserted := insertedFixture()
	lot, err := service.CreateLot(context.Background(), ownerScope, "importer@example.com", "stock.csv", inserted)

	require.NoError(t, err)
	require.NotNil(t, lot)
	assert.Equal(t, fmt.Sprintf("LOT-%d-0007", time.Now().Year()), lot.LotNumber)
	assert.Equal(t, ownerScope, lot.OwnerScope)
	assert.Equal(t, "stock.csv", lot.FileName)
	assert.Equal(t, "importer@example.com", lot.CreatedBy)
	assert.Equal(t, 2, lot.TotalRecords)
	assert.Equal(t, 6, lot.TotalStock)
	assert.True(t, lot.TotalCost.Equal(decimal.RequireFromString("7.00")))
	assert.True(t, lot.TotalRetailValue.Equal(decimal.RequireFromString("30.00")))
	assert.Equal(t, models.LotReceivedStatus, lot.Status)

	require.Len(t, repo.createdEntries, 2)
	first := repo.createdEntries[0]
	assert.Equal(t, lot.ID, first.LotID)
	assert.Equal(t, inserted[0].ID, first.ProductID)
	assert.Equal(t, 2, first.InitialStock)
	assert.Equal(t, 2, first.RemainingStock)
	require.NotNil(t, first.UnitCost)
	assert.True(t, first.UnitCost.Equal(decimal.RequireFromString("3.50")))
	assert.Nil(t, repo.createdEntries[1].UnitCost)
}

func TestCreateLotRetriesOnDuplicateNumber(t *testing.T) {
	repo := &fakeLotRepo{
		nextSeq: 1,
		createFailures: []error{
			gorm.ErrDuplicatedKey,
			errors.New(`duplicate key value violates unique constraint "idx_lots_owner_number"`),
		},
	}
	service := NewLotService(repo, &fakeProductRemover{}, zap.NewNop())

	lot, err := service.CreateLot(context.Background(), uuid.New(), "tester", "stock.csv", insertedFixture())

	require.NoError(t, err)
	require.NotNil(t, lot)
	assert.Equal(t, 3, repo.createCalls)
	assert.Equal(t, fmt.Sprintf("LOT-%d-0003", time.Now().Year()), lot.LotNumber)
	assert.NotEqual(t, uuid.Nil, lot.ID)
}

func TestCreateLotGivesUpAfterRetries(t *testing.T) {
	repo := &fakeLotRepo{
		nextSeq: 1,
		createFailures: []error{
			gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey,
			gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey,
		},
	}
	service := NewLotService(repo, &fakeProductRemover{}, zap.NewNop())

	lot, err := service.CreateLot(context.Background(), uuid.New(), "tester", "stock.csv", insertedFixture())

	require.Error(t, err)
	assert.Nil(t, lot)
	assert.Equal(t, 5, repo.createCalls)
	assert.Contains(t, err.Error(), "after 5 attempts")
}

func TestCreateLotFailsFastOnOtherErrors(t *testing.T) {
	repo := &fakeLotRepo{
		nextSeq:        1,
		createFailures: []error{errors.New("connection lost")},
	}
	service := NewLotService(repo, &fakeProductRemover{}, zap.NewNop())

	_, err := service.CreateLot(context.Background(), uuid.New(), "tester", "stock.csv", insertedFixture())

	require.Error(t, err)
	assert.Equal(t, 1, repo.createCalls)
	assert.Contains(t, err.Error(), "connection lost")
}

func TestCreateLotKeepsLotWhenEntriesFail(t *testing.T) {
	repo := &fakeLotRepo{nextSeq: 1, entriesErr: errors.New("disk full")}
	service := NewLotService(repo, &fakeProductRemover{}, zap.NewNop())

	lot, err := service.CreateLot(context.Background(), uuid.New(), "tester", "stock.csv", insertedFixture())

	require.NoError(t, err)
	require.NotNil(t, lot)
}

func TestCreateLotSequenceError(t *testing.T) {
	repo := &fakeLotRepo{seqErr: errors.New("scan failed")}
	service := NewLotService(repo, &fakeProductRemover{}, zap.NewNop())

	_, err := service.CreateLot(context.Background(), uuid.New(), "tester", "stock.csv", insertedFixture())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "next lot number")
	assert.Equal(t, 0, repo.createCalls)
}

func deletableLotFixture() (*fakeLotRepo, []uuid.UUID) {
	productIDs := []uuid.UUID{uuid.New(), uuid.New()}
	lot := &models.Lot{ID: uuid.New(), LotNumber: "LOT-2026-0001"}
	repo := &fakeLotRepo{
		lotByID: lot,
		entries: []models.LotEntry{
			{LotID: lot.ID, ProductID: productIDs[0]},
			{LotID: lot.ID, ProductID: productIDs[1]},
		},
	}
	return repo, productIDs
}

func TestDeleteLotRemovesProductsAndLot(t *testing.T) {
	repo, productIDs := deletableLotFixture()
	remover := &fakeProductRemover{deleted: 2}
	service := NewLotService(repo, remover, zap.NewNop())

	deleted, err := service.DeleteLot(context.Background(), repo.lotByID.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, productIDs, remover.checkedIDs)
	assert.Equal(t, productIDs, remover.deletedIDs)
	require.NotNil(t, repo.deletedLot)
	assert.Equal(t, repo.lotByID.ID, repo.deletedLot.ID)
}

func TestDeleteLotBlockedByOrderReferences(t *testing.T) {
	repo, _ := deletableLotFixture()
	remover := &fakeProductRemover{references: 2}
	service := NewLotService(repo, remover, zap.NewNop())

	_, err := service.DeleteLot(context.Background(), repo.lotByID.ID)

	require.Error(t, err)
	var refErr *ReferencedInventoryError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, int64(2), refErr.Blocked)
	assert.Equal(t, 0, remover.deleteCalls)
	assert.Nil(t, repo.deletedLot)
}

func TestDeleteLotNotFound(t *testing.T) {
	repo := &fakeLotRepo{getLotErr: gorm.ErrRecordNotFound}
	service := NewLotService(repo, &fakeProductRemover{}, zap.NewNop())

	_, err := service.DeleteLot(context.Background(), uuid.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
