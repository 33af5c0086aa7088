package controllers

import (
	"strings"

	audit_services "inventory-intake-backend/audit/services"
	"inventory-intake-backend/config"
	"inventory-intake-backend/db/models"
	"inventory-intake-backend/ingestion/services"
	"inventory-intake-backend/tasks"
	"inventory-intake-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadRecords persists the validated records of a session in batches, groups
// the inserted products into a receiving lot and writes the audit entry. The
// session is consumed on completion.
func (ic *IngestionController) UploadRecords(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid session ID"})
	}

	session, ok := ic.Sessions.Get(sessionID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Session not found or expired"})
	}

	if session.Result == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Rows have not been validated yet",
		})
	}
	if len(session.Result.ValidRecords) == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "No valid records to upload",
			"errors":  session.Result.Errors,
		})
	}
	if session.Uploading {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Upload already in progress for this session",
		})
	}
	session.Uploading = true

	result := session.Result
	ctx := c.Context()

	finalProgress, inserted := ic.Uploader.Upload(ctx, result.ValidRecords, session.OwnerScope, session.Actor, func(p services.UploadProgress) {
		ic.Hub.BroadcastToSession(session.ID.String(), websocket.WebSocketMessage{
			Type:    websocket.MessageTypeUploadProgress,
			Payload: p,
		})
	})

	lot, err := ic.LotService.CreateLot(ctx, session.OwnerScope, session.Actor, session.FileName, inserted)
	if err != nil {
		config.Logger.Error("Failed to create lot for upload",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
		// Products are committed, the upload stands even without its lot
	}

	var lotID *uuid.UUID
	if lot != nil {
		lotID = &lot.ID
	}

	totals := audit_services.AttemptTotals{
		TotalRows:    result.TotalRows,
		SuccessCount: finalProgress.SuccessCount,
		ErrorCount:   (result.TotalRows - len(result.ValidRecords)) + finalProgress.ErrorCount,
	}
	if err := ic.Recorder.LogAttempt(ctx, session.OwnerScope, session.Actor, session.FileName, totals, finalProgress.Errors, lotID); err != nil {
		config.Logger.Warn("Failed to record upload attempt", zap.Error(err))
	}

	ic.indexInserted(result.ValidRecords, inserted, session.OwnerScope, session.Actor)

	errorRows := buildErrorRows(session.OwnerScope, session.FileName, session.Actor, result.Errors, finalProgress.Errors)
	if err := ic.ProductRepo.LogBulkUploadProductErrors(errorRows); err != nil {
		config.Logger.Warn("Failed to log bulk upload errors", zap.Error(err))
	}

	ic.enqueueErrorReport(session, result.Errors, finalProgress.Errors)

	response := fiber.Map{
		"message":          "Bulk upload completed",
		"total_rows":       result.TotalRows,
		"successful_count": finalProgress.SuccessCount,
		"error_count":      totals.ErrorCount,
		"upload_errors":    finalProgress.Errors,
	}
	if lot != nil {
		response["lot"] = fiber.Map{
			"id":                 lot.ID,
			"lot_number":         lot.LotNumber,
			"total_records":      lot.TotalRecords,
			"total_stock":        lot.TotalStock,
			"total_cost":         lot.TotalCost,
			"total_retail_value": lot.TotalRetailValue,
		}
	}

	ic.Hub.BroadcastToSession(session.ID.String(), websocket.WebSocketMessage{
		Type: websocket.MessageTypeStageComplete,
		Payload: fiber.Map{
			"stage":            "upload",
			"successful_count": finalProgress.SuccessCount,
			"error_count":      totals.ErrorCount,
		},
	})

	ic.Sessions.Delete(session.ID)

	return c.Status(fiber.StatusOK).JSON(response)
}

// indexInserted pushes the committed products into the search index. Indexing
// is eventually consistent, failures never unwind the upload.
func (ic *IngestionController) indexInserted(records []services.ValidatedRecord, inserted []services.InsertedRecord, ownerScope uuid.UUID, actor string) {
	if ic.BleveRepo == nil || len(inserted) == 0 {
		return
	}

	bySKU := make(map[string]services.ValidatedRecord, len(records))
	for _, record := range records {
		bySKU[record.SKU] = record
	}

	products := make([]models.Product, 0, len(inserted))
	for _, ins := range inserted {
		record, ok := bySKU[ins.SKU]
		if !ok {
			continue
		}
		products = append(products, models.Product{
			ID:         ins.ID,
			OwnerScope: ownerScope,
			SKU:        record.SKU,
			Name:       record.Name,
			Brand:      record.Brand,
			Price:      record.Price,
			Stock:      record.Stock,
			Status:     record.Status,
			AddedVia:   models.BulkAddedViaType,
			CreatedBy:  actor,
		})
	}

	if err := ic.BleveRepo.IndexProducts(products); err != nil {
		config.Logger.Warn("Failed to index uploaded products", zap.Error(err))
	}
}

func buildErrorRows(
	ownerScope uuid.UUID,
	fileName string,
	actor string,
	validationErrors []services.RowError,
	uploadErrors []services.UploadRowError,
) []models.BulkUploadErrorProducts {
	rows := make([]models.BulkUploadErrorProducts, 0, len(validationErrors)+len(uploadErrors))

	for _, e := range validationErrors {
		rows = append(rows, models.BulkUploadErrorProducts{
			ID:         uuid.New(),
			OwnerScope: ownerScope,
			FileName:   fileName,
			RowNumber:  e.RowNumber,
			Field:      e.Field,
			Value:      e.Value,
			Reason:     e.Message,
			ErrorType:  classifyValidationError(e.Message),
			AddedVia:   models.BulkAddedViaType,
			CreatedBy:  actor,
		})
	}

	for _, e := range uploadErrors {
		rows = append(rows, models.BulkUploadErrorProducts{
			ID:         uuid.New(),
			OwnerScope: ownerScope,
			FileName:   fileName,
			RowNumber:  e.RowNumber,
			Field:      "sku",
			Value:      e.SKU,
			Reason:     e.Message,
			ErrorType:  models.PersistenceErrorType,
			AddedVia:   models.BulkAddedViaType,
			CreatedBy:  actor,
		})
	}

	return rows
}

func classifyValidationError(message string) models.BulkUploadErrorType {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "duplicate"):
		return models.DuplicateErrorType
	case strings.Contains(lower, "required"):
		return models.MissingDataErrorType
	default:
		return models.InvalidValueErrorType
	}
}

// enqueueErrorReport hands the combined error list to the background worker
// that mails the workbook. Skipped when there is nothing to report or the
// actor is not an address the mail can go to.
func (ic *IngestionController) enqueueErrorReport(
	session *services.UploadSession,
	validationErrors []services.RowError,
	uploadErrors []services.UploadRowError,
) {
	if ic.AsynqClient == nil {
		return
	}
	if len(validationErrors) == 0 && len(uploadErrors) == 0 {
		return
	}
	if !strings.Contains(session.Actor, "@") {
		return
	}

	combined := make([]services.UploadRowError, 0, len(validationErrors)+len(uploadErrors))
	for _, e := range validationErrors {
		combined = append(combined, services.UploadRowError{
			RowNumber: e.RowNumber,
			Message:   e.Field + ": " + e.Message,
		})
	}
	combined = append(combined, uploadErrors...)

	task, err := tasks.NewUploadErrorReportTask(tasks.UploadErrorReportPayload{
		OwnerScope: session.OwnerScope,
		FileName:   session.FileName,
		Recipient:  session.Actor,
		RowErrors:  combined,
	})
	if err != nil {
		config.Logger.Warn("Failed to build error report task", zap.Error(err))
		return
	}

	if _, err := ic.AsynqClient.Enqueue(task); err != nil {
		config.Logger.Warn("Failed to enqueue error report task", zap.Error(err))
	}
}
