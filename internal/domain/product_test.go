package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

func makeProduct() domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ID:         "product-1",
		Name:       "iPhone 15 Pro Max",
		Category:   "Smartphones",
		PriceMinor: 3000000000,
		Quantity:   8,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestProductValidateInvariants_Ok(t *testing.T) {
	product := makeProduct()
	if errs := product.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestProductValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(p *domain.Product)
	}{
		{
			name: "no name",
			mut: func(p *domain.Product) {
				p.Name = ""
			},
		},
		{
			name: "no category",
			mut: func(p *domain.Product) {
				p.Category = ""
			},
		},
		{
			name: "negative price",
			mut: func(p *domain.Product) {
				p.PriceMinor = -1
			},
		},
		{
			name: "negative quantity",
			mut: func(p *domain.Product) {
				p.Quantity = -1
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			product := makeProduct()
			tc.mut(&product)

			if len(product.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}
