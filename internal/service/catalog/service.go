package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// ProductInput описывает поля товара, задаваемые при создании и правке.
type ProductInput struct {
	Name       string
	Category   string
	PriceMinor int64
	Quantity   int32
}

// Service управляет каталогом товаров. Прямые правки остатка проходят
// только через каталог; складские эффекты переходов заказов — зона
// ответственности движка.
type Service struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{products: products, logger: logger}
}

// CreateProduct валидирует и сохраняет новый товар.
func (s *Service) CreateProduct(input ProductInput) (domain.Product, error) {
	now := time.Now().UTC()
	product := domain.Product{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(input.Name),
		Category:   strings.TrimSpace(input.Category),
		PriceMinor: input.PriceMinor,
		Quantity:   input.Quantity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errs[0]
	}

	if err := s.products.Create(product); err != nil {
		s.logger.WithError(err).WithField("product_id", product.ID).Error("failed to create product")
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("product created")
	return product, nil
}

// UpdateProduct перезаписывает описательные поля существующего товара.
func (s *Service) UpdateProduct(id string, input ProductInput) (domain.Product, error) {
	current, err := s.products.Get(id)
	if err != nil {
		return domain.Product{}, err
	}

	current.Name = strings.TrimSpace(input.Name)
	current.Category = strings.TrimSpace(input.Category)
	current.PriceMinor = input.PriceMinor
	current.Quantity = input.Quantity
	current.UpdatedAt = time.Now().UTC()

	if errs := current.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errs[0]
	}

	if err := s.products.Update(current); err != nil {
		s.logger.WithError(err).WithField("product_id", id).Error("failed to update product")
		return domain.Product{}, err
	}
	return current, nil
}

// DeleteProduct удаляет товар из каталога. Исторические заказы хранят
// снимок позиции и удалением не затрагиваются.
func (s *Service) DeleteProduct(id string) error {
	if err := s.products.Delete(id); err != nil {
		return err
	}
	s.logger.WithField("product_id", id).Info("product deleted")
	return nil
}

// GetProduct возвращает товар по идентификатору.
func (s *Service) GetProduct(id string) (domain.Product, error) {
	return s.products.Get(id)
}

// ListProducts возвращает каталог, отсортированный по имени.
func (s *Service) ListProducts() ([]domain.Product, error) {
	return s.products.List()
}
