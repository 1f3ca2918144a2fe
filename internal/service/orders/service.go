package orders

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/messaging/kafka"
)

// DraftItem — позиция черновика заказа: ссылка на товар и количество.
type DraftItem struct {
	ProductID string
	Qty       int32
}

// Draft описывает входные данные нового заказа.
type Draft struct {
	CustomerName string
	Phone        string
	Address      string
	Items        []DraftItem
}

// Service создаёт заказы, фиксируя снимок каталога на момент создания.
// Создание заказа не трогает складские остатки: списание выполняет движок
// при входе заказа в completed.
type Service struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	outbox   domain.OutboxRepository
	logger   *log.Entry
}

// NewService создаёт сервис заказов.
func NewService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{
		orders:   orders,
		products: products,
		outbox:   outbox,
		logger:   logger,
	}
}

// CreateOrder валидирует черновик, снимает снимок имени и цены каждого
// товара и сохраняет заказ со статусом pending.
func (s *Service) CreateOrder(draft Draft) (domain.Order, error) {
	now := time.Now().UTC()

	items := make([]domain.OrderLineItem, 0, len(draft.Items))
	var amount int64
	for _, item := range draft.Items {
		if item.Qty <= 0 {
			return domain.Order{}, domain.ErrItemQtyInvalid
		}
		product, err := s.products.Get(item.ProductID)
		if err != nil {
			return domain.Order{}, err
		}
		// Снимок каталога: позиция не отслеживает последующие правки товара.
		items = append(items, domain.OrderLineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Qty:         item.Qty,
			PriceMinor:  product.PriceMinor,
		})
		amount += int64(item.Qty) * product.PriceMinor
	}

	order := domain.Order{
		ID:           uuid.NewString(),
		CustomerName: strings.TrimSpace(draft.CustomerName),
		Phone:        strings.TrimSpace(draft.Phone),
		Address:      strings.TrimSpace(draft.Address),
		Status:       domain.OrderStatusPending,
		AmountMinor:  amount,
		Items:        items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errs[0]
	}

	if err := s.orders.Create(order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to create order")
		return domain.Order{}, err
	}

	s.emitCreatedEvent(order)
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"amount_minor": order.AmountMinor,
		"items":        len(order.Items),
	}).Info("order created")
	return order, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(id string) (domain.Order, error) {
	return s.orders.Get(id)
}

// ListOrders возвращает заказы от новых к старым.
func (s *Service) ListOrders(limit int) ([]domain.Order, error) {
	return s.orders.List(limit)
}

func (s *Service) emitCreatedEvent(order domain.Order) {
	if s.outbox == nil {
		return
	}

	event := kafka.NewOrderEvent(kafka.EventTypeOrderCreated, order.ID, string(order.Status), map[string]interface{}{
		"amount_minor": order.AmountMinor,
	})
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(kafka.EventTypeOrderCreated),
		Payload:       payload,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("enqueue event failed")
	}
}
