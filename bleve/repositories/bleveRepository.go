package repositories

import (
	bleveindex "inventory-intake-backend/bleve/services"
	"inventory-intake-backend/db/models"

	"github.com/blevesearch/bleve/v2"
)

type BleveRepository struct {
	indexer *bleveindex.IndexingService
}

type BleveRepositoryInterface interface {
	IndexSingleProduct(product models.Product) error
	IndexProducts(products []models.Product) error
	SearchProducts(queryString, status, brand, ownerScope string) (*bleve.SearchResult, error)
	DeleteProduct(productID string) error
	GetProductDocument(id string) (interface{}, error)
}

// Constructor returning both the struct and the interface
func NewBleveRepository(indexer *bleveindex.IndexingService) (*BleveRepository, BleveRepositoryInterface) {
	repo := &BleveRepository{indexer: indexer}
	return repo, repo
}
