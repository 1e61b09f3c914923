package service

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/pkg/catalog"
)

// catalogValidator builds a validator that knows the catalog tags. A nil cat
// uses the embedded catalog.
func catalogValidator(cat *catalog.Catalog) *validator.Validate {
	if cat == nil {
		def, err := catalog.Default()
		if err != nil {
			panic(fmt.Sprintf("service: load embedded catalog: %v", err))
		}
		cat = def
	}
	v, err := dto.NewValidator(cat)
	if err != nil {
		panic(fmt.Sprintf("service: build validator: %v", err))
	}
	return v
}
