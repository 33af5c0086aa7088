package controllers

import (
	"inventory-intake-backend/lots/repositories"
	"inventory-intake-backend/lots/services"

	"gorm.io/gorm"
)

type LotController struct {
	LotRepo    repositories.LotRepository
	LotService *services.LotService
	DB         *gorm.DB
}
