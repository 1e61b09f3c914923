package service

import (
	"context"

	"github.com/noah-isme/placement-portal-api/pkg/catalog"
)

// CatalogService serves the dropdown options derived from the catalog.
type CatalogService struct {
	catalog *catalog.Catalog
	cache   *CacheService
}

// NewCatalogService constructs a catalog service.
func NewCatalogService(cat *catalog.Catalog, cache *CacheService) *CatalogService {
	return &CatalogService{catalog: cat, cache: cache}
}

// DropdownOptions returns the filter options shown on the homepage.
func (s *CatalogService) DropdownOptions(ctx context.Context) catalog.Options {
	var opts catalog.Options
	if s.cache.Get(ctx, cacheKeyDropdownOptions, &opts) {
		return opts
	}
	opts = s.catalog.Options()
	s.cache.Set(ctx, cacheKeyDropdownOptions, opts, 0)
	return opts
}
