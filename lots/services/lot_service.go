package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-intake-backend/db/models"
	ingestion_services "inventory-intake-backend/ingestion/services"
	"inventory-intake-backend/lots/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// lotNumberRetries bounds how often CreateLot re-derives the sequence after
// losing a duplicate-key race to a concurrent upload.
const lotNumberRetries = 5

// ReferencedInventoryError blocks lot deletion: some of the lot's products
// already back order lines, so the lot is part of sold history.
type ReferencedInventoryError struct {
	Blocked int64
}

func (e *ReferencedInventoryError) Error() string {
	return fmt.Sprintf("lot cannot be deleted: %d of its products are referenced by orders", e.Blocked)
}

// ProductRemover is the slice of the product repository lot deletion needs.
type ProductRemover interface {
	DeleteProductsByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	CountOrderLineReferences(ctx context.Context, productIDs []uuid.UUID) (int64, error)
}

type LotService struct {
	lotRepo  repositories.LotRepository
	products ProductRemover
	logger   *zap.Logger
}

func NewLotService(lotRepo repositories.LotRepository, products ProductRemover, logger *zap.Logger) *LotService {
	return &LotService{lotRepo: lotRepo, products: products, logger: logger}
}

// CreateLot wraps the records a successful upload inserted into a numbered
// lot with one entry per record. An upload that inserted nothing produces no
// lot. Entry persistence is best-effort bookkeeping: the canonical stock
// lives on the product rows, so an entry failure never unwinds the lot.
func (s *LotService) CreateLot(ctx context.Context, ownerScope uuid.UUID, actor, fileName string, inserted []ingestion_services.InsertedRecord) (*models.Lot, error) {
	if len(inserted) == 0 {
		return nil, nil
	}

	totalStock := 0
	totalCost := decimal.Zero
	totalRetail := decimal.Zero
	for _, record := range inserted {
		totalStock += record.Stock
		stock := decimal.NewFromInt(int64(record.Stock))
		if record.Cost != nil {
			totalCost = totalCost.Add(stock.Mul(*record.Cost))
		}
		totalRetail = totalRetail.Add(stock.Mul(record.Price))
	}

	year := time.Now().Year()
	seq, err := s.lotRepo.NextLotSequence(ctx, ownerScope, year)
	if err != nil {
		return nil, fmt.Errorf("failed to derive next lot number: %w", err)
	}

	lot := &models.Lot{
		OwnerScope:       ownerScope,
		FileName:         fileName,
		TotalRecords:     len(inserted),
		TotalStock:       totalStock,
		TotalCost:        totalCost,
		TotalRetailValue: totalRetail,
		Status:           models.LotReceivedStatus,
		CreatedBy:        actor,
	}

	for attempt := 0; attempt < lotNumberRetries; attempt++ {
		lot.ID = uuid.Nil
		lot.LotNumber = fmt.Sprintf("LOT-%d-%04d", year, seq)
		err = s.lotRepo.CreateLot(ctx, lot)
		if err == nil {
			break
		}
		if !isDuplicateKey(err) {
			return nil, fmt.Errorf("failed to create lot: %w", err)
		}
		// Lost the number to a concurrent upload for the same owner+year.
		seq++
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create lot after %d attempts: %w", lotNumberRetries, err)
	}

	entries := make([]models.LotEntry, len(inserted))
	for i, record := range inserted {
		entries[i] = models.LotEntry{
			LotID:          lot.ID,
			ProductID:      record.ID,
			InitialStock:   record.Stock,
			RemainingStock: record.Stock,
			UnitCost:       record.Cost,
			UnitPrice:      record.Price,
		}
	}
	if err := s.lotRepo.CreateLotEntries(ctx, entries); err != nil {
		s.logger.Error("failed to write lot entries, lot kept without full bookkeeping",
			zap.String("lot_number", lot.LotNumber),
			zap.Error(err),
		)
	}

	return lot, nil
}

// DeleteLot removes a lot, its entries and the products it brought in, unless
// any of those products is referenced by an order line. The check and the
// delete are not one transaction: a reference arriving between them is an
// accepted, rare race for this administrative action, not something worth
// full serialization.
func (s *LotService) DeleteLot(ctx context.Context, lotID uuid.UUID) (int, error) {
	lot, err := s.lotRepo.GetLotByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("lot %s not found", lotID)
		}
		return 0, err
	}

	entries, err := s.lotRepo.GetLotEntries(ctx, lotID)
	if err != nil {
		return 0, fmt.Errorf("failed to load lot entries: %w", err)
	}

	productIDs := make([]uuid.UUID, len(entries))
	for i, entry := range entries {
		productIDs[i] = entry.ProductID
	}

	blocked, err := s.products.CountOrderLineReferences(ctx, productIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to check order references: %w", err)
	}
	if blocked > 0 {
		return 0, &ReferencedInventoryError{Blocked: blocked}
	}

	deleted, err := s.products.DeleteProductsByIDs(ctx, productIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete lot products: %w", err)
	}

	if err := s.lotRepo.DeleteLot(ctx, lot); err != nil {
		return int(deleted), fmt.Errorf("products deleted but lot removal failed: %w", err)
	}

	s.logger.Info("lot deleted",
		zap.String("lot_number", lot.LotNumber),
		zap.Int64("deleted_products", deleted),
	)
	return int(deleted), nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key")
}
