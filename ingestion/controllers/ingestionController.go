package controllers

import (
	audit_services "inventory-intake-backend/audit/services"
	indexing_repository "inventory-intake-backend/bleve/repositories"
	"inventory-intake-backend/ingestion/repositories"
	"inventory-intake-backend/ingestion/services"
	lots_services "inventory-intake-backend/lots/services"
	"inventory-intake-backend/websocket"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type IngestionController struct {
	DB          *gorm.DB
	ProductRepo repositories.ProductRepository
	LotService  *lots_services.LotService
	Recorder    *audit_services.Recorder
	Sessions    *services.SessionRegistry
	Mapper      *services.ColumnMapper
	Uploader    *services.BatchUploader
	BleveRepo   indexing_repository.BleveRepositoryInterface
	Hub         *websocket.Hub
	AsynqClient *asynq.Client
}
