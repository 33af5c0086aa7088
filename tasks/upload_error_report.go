package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventory-intake-backend/config"
	"inventory-intake-backend/db/models"
	ingestion_repositories "inventory-intake-backend/ingestion/repositories"
	ingestion_services "inventory-intake-backend/ingestion/services"
	"inventory-intake-backend/utils"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeUploadErrorReport = "upload:error_report"

// UploadErrorReportPayload carries everything the worker needs to build and
// mail an error workbook for a finished upload attempt.
type UploadErrorReportPayload struct {
	OwnerScope uuid.UUID                           `json:"owner_scope"`
	FileName   string                              `json:"file_name"`
	Recipient  string                              `json:"recipient"`
	RowErrors  []ingestion_services.UploadRowError `json:"row_errors"`
}

func NewUploadErrorReportTask(payload UploadErrorReportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal error report payload: %w", err)
	}
	return asynq.NewTask(TypeUploadErrorReport, data, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)), nil
}

// UploadErrorReportProcessor generates the workbook, mails the download link
// and records the e-mail.
type UploadErrorReportProcessor struct {
	productRepo ingestion_repositories.ProductRepository
	baseURL     string
}

func NewUploadErrorReportProcessor(productRepo ingestion_repositories.ProductRepository, baseURL string) *UploadErrorReportProcessor {
	return &UploadErrorReportProcessor{
		productRepo: productRepo,
		baseURL:     baseURL,
	}
}

func (p *UploadErrorReportProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload UploadErrorReportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal error report payload: %v: %w", err, asynq.SkipRetry)
	}

	if len(payload.RowErrors) == 0 || payload.Recipient == "" {
		config.Logger.Debug("Skipping error report task with nothing to send",
			zap.String("file_name", payload.FileName),
		)
		return nil
	}

	publicPath, err := utils.GenerateErrorReportExcel(payload.FileName, payload.RowErrors)
	if err != nil {
		config.Logger.Error("Failed to generate error report workbook",
			zap.String("file_name", payload.FileName),
			zap.Error(err),
		)
		return err
	}

	downloadURL := p.baseURL + publicPath
	subject := fmt.Sprintf("Upload errors for %s", payload.FileName)
	body := fmt.Sprintf(`
		<html>
			<body>
				<p>Your bulk upload of <strong>%s</strong> finished with %d rows that could not be saved.</p>
				<p><a href="%s" target="_blank">Download the error report</a></p>
				<p>The report is available for 24 hours.</p>
			</body>
		</html>
	`, payload.FileName, len(payload.RowErrors), downloadURL)

	if err := utils.SendEmail(payload.Recipient, body, subject, ""); err != nil {
		return err
	}

	active := true
	emailLog := &models.EmailLog{
		ID:             uuid.New(),
		Recipient:      payload.Recipient,
		Subject:        subject,
		Message:        downloadURL,
		SentAt:         time.Now(),
		Active:         &active,
		AttachmentPath: publicPath,
	}
	if err := p.productRepo.LogEmailSent(emailLog); err != nil {
		// The mail went out, a missing log row is not worth a retry
		config.Logger.Error("Failed to record sent error report e-mail",
			zap.String("recipient", payload.Recipient),
			zap.Error(err),
		)
	}

	config.Logger.Info("Upload error report sent",
		zap.String("recipient", payload.Recipient),
		zap.String("file_name", payload.FileName),
		zap.Int("error_count", len(payload.RowErrors)),
	)
	return nil
}
