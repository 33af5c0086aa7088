package services

import (
	"context"
	"encoding/json"

	"inventory-intake-backend/audit/repositories"
	"inventory-intake-backend/db/models"
	ingestion_services "inventory-intake-backend/ingestion/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttemptTotals summarizes one upload attempt for the audit trail.
type AttemptTotals struct {
	TotalRows    int
	SuccessCount int
	ErrorCount   int
}

// Recorder writes one immutable audit row per upload attempt. It is
// observability, not correctness: a failed write is logged and reported but
// never unwinds committed product or lot data.
type Recorder struct {
	repo   repositories.UploadLogRepository
	logger *zap.Logger
}

func NewRecorder(repo repositories.UploadLogRepository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) LogAttempt(
	ctx context.Context,
	ownerScope uuid.UUID,
	actor string,
	fileName string,
	totals AttemptTotals,
	rowErrors []ingestion_services.UploadRowError,
	lotID *uuid.UUID,
) error {
	serialized, err := json.Marshal(rowErrors)
	if err != nil {
		// Fall back to an empty list rather than lose the attempt record.
		r.logger.Warn("failed to serialize upload errors for audit", zap.Error(err))
		serialized = []byte("[]")
	}

	entry := &models.UploadLogEntry{
		OwnerScope:   ownerScope,
		FileName:     fileName,
		TotalRows:    totals.TotalRows,
		SuccessCount: totals.SuccessCount,
		ErrorCount:   totals.ErrorCount,
		Errors:       serialized,
		LotID:        lotID,
		Actor:        actor,
	}

	if err := r.repo.CreateUploadLogEntry(ctx, entry); err != nil {
		r.logger.Error("failed to write upload audit entry",
			zap.String("file_name", fileName),
			zap.String("actor", actor),
			zap.Error(err),
		)
		return err
	}
	return nil
}
