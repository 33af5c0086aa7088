package repositories

import (
	"strings"

	"inventory-intake-backend/config"
	"inventory-intake-backend/db/models"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"
)

type bleveProductDoc struct {
	ID         string `json:"id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Brand      string `json:"brand,omitempty"`
	Status     string `json:"status"`
	OwnerScope string `json:"owner_scope"`
	Stock      int    `json:"stock"`
	Price      string `json:"price"`
}

func toBleveProductDoc(product models.Product) bleveProductDoc {
	var brand string
	if product.Brand != nil {
		brand = *product.Brand
	}

	return bleveProductDoc{
		ID:         product.ID.String(),
		SKU:        product.SKU,
		Name:       product.Name,
		Brand:      brand,
		Status:     string(product.Status),
		OwnerScope: product.OwnerScope.String(),
		Stock:      product.Stock,
		Price:      product.Price.String(),
	}
}

func (r *BleveRepository) IndexSingleProduct(product models.Product) error {
	err := r.indexer.IndexDocument("products", product.ID.String(), toBleveProductDoc(product))
	if err != nil {
		config.Logger.Error("Failed to index single product into Bleve",
			zap.Error(err),
			zap.String("product_id", product.ID.String()))
		return err
	}

	return nil
}

func (r *BleveRepository) IndexProducts(products []models.Product) error {
	docsToBleveIndex := make(map[string]interface{})

	for _, product := range products {
		docsToBleveIndex[product.ID.String()] = toBleveProductDoc(product)
	}

	if len(docsToBleveIndex) > 0 {
		err := r.indexer.BulkIndexDocuments("products", docsToBleveIndex)
		if err != nil {
			config.Logger.Error("Failed to bulk index products into Bleve", zap.Error(err))
			return err
		}
		config.Logger.Info("Bulk indexed products into Bleve",
			zap.Int("count", len(docsToBleveIndex)))
	}

	return nil
}

func (r *BleveRepository) SearchProducts(
	queryString string,
	status string,
	brand string,
	ownerScope string,
) (*bleve.SearchResult, error) {
	booleanQuery := bleve.NewBooleanQuery()
	queryString = strings.TrimSpace(queryString)
	queryStringLower := strings.ToLower(queryString)

	// Search strategies
	if queryString != "" {
		exactMatch := bleve.NewBooleanQuery()

		// Exact matches for SKU
		skuExact := bleve.NewTermQuery(queryString)
		skuExact.SetField("sku")
		skuExact.SetBoost(10.0)
		exactMatch.AddShould(skuExact)

		skuExactLower := bleve.NewTermQuery(queryStringLower)
		skuExactLower.SetField("sku")
		skuExactLower.SetBoost(9.0)
		exactMatch.AddShould(skuExactLower)

		// Product name exact matches
		nameExact := bleve.NewTermQuery(queryStringLower)
		nameExact.SetField("name")
		nameExact.SetBoost(8.0)
		exactMatch.AddShould(nameExact)

		// Match query for analyzed fields
		matchQuery := bleve.NewMatchQuery(queryString)
		matchQuery.SetField("name")
		matchQuery.SetBoost(7.0)
		exactMatch.AddShould(matchQuery)

		// Prefix matches
		prefixMatch := bleve.NewBooleanQuery()

		skuPrefix := bleve.NewPrefixQuery(queryStringLower)
		skuPrefix.SetField("sku")
		skuPrefix.SetBoost(6.0)
		prefixMatch.AddShould(skuPrefix)

		namePrefix := bleve.NewPrefixQuery(queryStringLower)
		namePrefix.SetField("name")
		namePrefix.SetBoost(5.0)
		prefixMatch.AddShould(namePrefix)

		// Fuzzy search for typos
		fuzzyQuery := bleve.NewFuzzyQuery(queryStringLower)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(4.0)
		fuzzyQuery.SetFuzziness(1)
		prefixMatch.AddShould(fuzzyQuery)

		booleanQuery.AddShould(exactMatch)
		booleanQuery.AddShould(prefixMatch)
	}

	// Build final query with filters
	finalQuery := bleve.NewBooleanQuery()
	if queryString != "" {
		finalQuery.AddMust(booleanQuery)
	}

	if status != "" {
		statusQuery := bleve.NewTermQuery(strings.ToLower(status))
		statusQuery.SetField("status")
		finalQuery.AddMust(statusQuery)
	}

	if brand != "" {
		brandQuery := bleve.NewTermQuery(strings.ToLower(brand))
		brandQuery.SetField("brand")
		finalQuery.AddMust(brandQuery)
	}

	if ownerScope != "" {
		scopeQuery := bleve.NewTermQuery(strings.ToLower(ownerScope))
		scopeQuery.SetField("owner_scope")
		finalQuery.AddMust(scopeQuery)
	}

	return r.indexer.SearchIndex("products", finalQuery, 20)
}

// DeleteProduct removes a product from the index
func (r *BleveRepository) DeleteProduct(productID string) error {
	err := r.indexer.DeleteDocument("products", productID)
	if err != nil {
		config.Logger.Error("Failed to delete product from Bleve",
			zap.Error(err),
			zap.String("product_id", productID))
		return err
	}
	return nil
}

func (r *BleveRepository) GetProductDocument(id string) (interface{}, error) {
	return r.indexer.GetDocument("products", id)
}
