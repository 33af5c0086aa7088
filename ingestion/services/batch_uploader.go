package services

import (
	"context"
	"errors"
	"strings"

	"inventory-intake-backend/db/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// uploadBatchSize is how many records go into one bulk insert.
const uploadBatchSize = 100

// ProductStore is the narrow slice of the product repository the uploader
// needs: one bulk insert and one single-row insert.
type ProductStore interface {
	BulkCreateProducts(ctx context.Context, products []models.Product) error
	CreateProduct(ctx context.Context, product *models.Product) error
}

type BatchUploader struct {
	store  ProductStore
	logger *zap.Logger
}

func NewBatchUploader(store ProductStore, logger *zap.Logger) *BatchUploader {
	return &BatchUploader{store: store, logger: logger}
}

// Upload persists the validated records in fixed-size batches. A failed bulk
// insert is never surfaced as a batch-level error: every record of that batch
// is retried individually so one bad row cannot sink its neighbours. After
// every batch the progress snapshot is handed to the callback.
// successCount + errorCount always equals len(records) on return.
func (u *BatchUploader) Upload(
	ctx context.Context,
	records []ValidatedRecord,
	ownerScope uuid.UUID,
	actor string,
	progress func(UploadProgress),
) (UploadProgress, []InsertedRecord) {
	state := UploadProgress{
		TotalBatches: (len(records) + uploadBatchSize - 1) / uploadBatchSize,
	}
	var inserted []InsertedRecord

	for start := 0; start < len(records); start += uploadBatchSize {
		end := start + uploadBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		state.CurrentBatch = state.CompletedBatches + 1

		products := make([]models.Product, len(batch))
		for i, record := range batch {
			products[i] = buildProduct(record, ownerScope, actor)
		}

		if err := u.store.BulkCreateProducts(ctx, products); err != nil {
			u.logger.Warn("bulk insert failed, retrying records individually",
				zap.Int("batch", state.CurrentBatch),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			u.retryIndividually(ctx, batch, products, &state, &inserted)
		} else {
			state.SuccessCount += len(batch)
			for i, record := range batch {
				inserted = append(inserted, insertedFrom(record, products[i].ID))
			}
		}

		state.CompletedBatches++
		if progress != nil {
			progress(snapshotProgress(state))
		}
	}

	return snapshotProgress(state), inserted
}

// retryIndividually gives every record of a failed batch its own insert, in
// batch order so error attribution stays deterministic.
func (u *BatchUploader) retryIndividually(
	ctx context.Context,
	batch []ValidatedRecord,
	products []models.Product,
	state *UploadProgress,
	inserted *[]InsertedRecord,
) {
	for i := range batch {
		product := products[i]
		if err := u.store.CreateProduct(ctx, &product); err != nil {
			state.ErrorCount++
			state.Errors = append(state.Errors, UploadRowError{
				RowNumber: batch[i].RowNumber,
				SKU:       batch[i].SKU,
				Message:   translatePersistenceError(err),
			})
			continue
		}
		state.SuccessCount++
		*inserted = append(*inserted, insertedFrom(batch[i], product.ID))
	}
}

func buildProduct(record ValidatedRecord, ownerScope uuid.UUID, actor string) models.Product {
	return models.Product{
		ID:          uuid.New(),
		OwnerScope:  ownerScope,
		SKU:         record.SKU,
		Name:        record.Name,
		Description: record.Description,
		Brand:       record.Brand,
		ExternalRef: record.ExternalRef,
		Price:       record.Price,
		Cost:        record.Cost,
		Stock:       record.Stock,
		MinStock:    record.MinStock,
		Status:      record.Status,
		AddedVia:    models.BulkAddedViaType,
		CreatedBy:   actor,
	}
}

func insertedFrom(record ValidatedRecord, id uuid.UUID) InsertedRecord {
	return InsertedRecord{
		ID:        id,
		SKU:       record.SKU,
		Stock:     record.Stock,
		Cost:      record.Cost,
		Price:     record.Price,
		RowNumber: record.RowNumber,
	}
}

// translatePersistenceError converts a raw store failure into the message a
// spreadsheet reviewer can act on.
func translatePersistenceError(err error) string {
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
		return "SKU already exists"
	}
	return err.Error()
}

func snapshotProgress(state UploadProgress) UploadProgress {
	snapshot := state
	snapshot.Errors = make([]UploadRowError, len(state.Errors))
	copy(snapshot.Errors, state.Errors)
	return snapshot
}
