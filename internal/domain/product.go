package domain

import "time"

// Product описывает товар каталога.
type Product struct {
	ID       string
	Name     string
	Category string
	// PriceMinor — цена в минимальных денежных единицах (например, копейки).
	PriceMinor int64
	// Quantity — остаток на складе. Инвариант Quantity >= 0 поддерживается
	// движком переходов и guard-условием в хранилище, но не прямыми правками.
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты товара.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.Category == "" {
		errs = append(errs, ErrProductCategoryRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrProductPriceNegative)
	}
	if p.Quantity < 0 {
		errs = append(errs, ErrProductQuantityNegative)
	}

	return errs
}
