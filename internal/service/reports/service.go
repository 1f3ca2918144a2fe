package reports

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// lowStockThreshold — порог, ниже которого товар попадает в список дефицита.
const lowStockThreshold = 5

// Summary агрегирует показатели каталога и заказов для дашборда.
type Summary struct {
	TotalProducts   int   `json:"total_products"`
	TotalStockUnits int64 `json:"total_stock_units"`
	// InventoryValueMinor — стоимость остатков каталога в минимальных
	// единицах: сумма цена × количество по всем товарам.
	InventoryValueMinor int64                      `json:"inventory_value_minor"`
	LowStockProducts    []domain.Product           `json:"low_stock_products"`
	ProductsByCat       map[string]int             `json:"products_by_category"`
	TotalOrders         int                        `json:"total_orders"`
	OrdersByStatus      map[domain.OrderStatus]int `json:"orders_by_status"`
	// RevenueMinor — выручка по завершённым заказам в минимальных единицах.
	RevenueMinor int64 `json:"revenue_minor"`
}

// Service строит сводку дашборда по текущему состоянию хранилищ.
type Service struct {
	products domain.ProductRepository
	orders   domain.OrderRepository
	logger   *log.Entry
}

// NewService создаёт сервис отчётов.
func NewService(products domain.ProductRepository, orders domain.OrderRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "reports")
	}
	return &Service{products: products, orders: orders, logger: logger}
}

// Dashboard собирает сводку: остатки и дефицит каталога, распределение
// заказов по статусам и выручку по завершённым заказам.
func (s *Service) Dashboard() (Summary, error) {
	products, err := s.products.List()
	if err != nil {
		return Summary{}, err
	}
	orders, err := s.orders.List(0)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalProducts:    len(products),
		TotalOrders:      len(orders),
		LowStockProducts: make([]domain.Product, 0),
		ProductsByCat:    make(map[string]int),
		OrdersByStatus:   make(map[domain.OrderStatus]int),
	}

	for _, product := range products {
		summary.TotalStockUnits += int64(product.Quantity)
		summary.InventoryValueMinor += int64(product.Quantity) * product.PriceMinor
		summary.ProductsByCat[product.Category]++
		if product.Quantity < lowStockThreshold {
			summary.LowStockProducts = append(summary.LowStockProducts, product)
		}
	}

	for _, order := range orders {
		summary.OrdersByStatus[order.Status]++
		// Выручка считается по зафиксированной сумме заказа, не по текущим
		// ценам каталога.
		if order.Status == domain.OrderStatusCompleted {
			summary.RevenueMinor += order.AmountMinor
		}
	}

	return summary, nil
}
