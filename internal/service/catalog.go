package service

import (
	"context"
	"fmt"
	"time"

	"bakery-service/internal/models"
	"bakery-service/internal/redisclient"
	"bakery-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const catalogCacheKey = "catalog:active"

// CatalogService manages products. Storefront reads are served from a short
// Redis cache that admin writes invalidate.
type CatalogService struct {
	store  ProductStore
	cache  *redisclient.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service. A nil cache disables
// caching and serves every read from the store.
func NewCatalogService(productStore ProductStore, cache *redisclient.Client, ttl time.Duration) *CatalogService {
	return &CatalogService{
		store:  productStore,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// ActiveProducts returns the storefront catalog
func (s *CatalogService) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ActiveProducts")
	defer span.End()

	if s.cache != nil {
		var cached []models.Product
		hit, err := s.cache.GetJSON(ctx, catalogCacheKey, &cached)
		if err != nil {
			s.logger.Warn("Catalog cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	products, err := s.store.GetActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, catalogCacheKey, products, s.ttl); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}

	return products, nil
}

// AllProducts returns every product for the admin dashboard
func (s *CatalogService) AllProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetProducts(ctx)
}

// Product returns a single product
func (s *CatalogService) Product(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// CreateProduct adds a product to the catalog
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name))
	return nil
}

// UpdateProduct edits a product
func (s *CatalogService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.logger.Info("Product updated", zap.String("product_id", product.ID))
	return nil
}

// DeleteProduct removes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
		s.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
