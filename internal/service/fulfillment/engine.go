package fulfillment

import (
	"encoding/json"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/backoffice/internal/metrics"
)

// Engine валидирует и применяет переходы статусов заказов, согласуя их
// со складскими остатками. Вся легальность переходов и весь складской
// эффект сосредоточены здесь: обходной путь мимо движка отсутствует.
type Engine struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	outbox   domain.OutboxRepository
	logger   *log.Entry
	metrics  *metrics.FulfillmentMetrics
	locks    *productLocks
}

// Результаты перехода для метрик.
const (
	resultApplied           = "applied"
	resultNoop              = "noop"
	resultInvalidTransition = "invalid_transition"
	resultInsufficientStock = "insufficient_stock"
	resultNotFound          = "not_found"
	resultError             = "error"
)

// NewEngine создаёт рабочий экземпляр движка.
func NewEngine(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Engine {
	if logger == nil {
		logger = log.New().WithField("component", "fulfillment")
	}
	return &Engine{
		orders:   orders,
		products: products,
		outbox:   outbox,
		logger:   logger,
		metrics:  metrics.NewFulfillmentMetrics(),
		locks:    newProductLocks(),
	}
}

// NewEngineWithoutMetrics создаёт движок без метрик (для тестов).
func NewEngineWithoutMetrics(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Engine {
	if logger == nil {
		logger = log.New().WithField("component", "fulfillment")
	}
	return &Engine{
		orders:   orders,
		products: products,
		outbox:   outbox,
		logger:   logger,
		metrics:  nil,
		locks:    newProductLocks(),
	}
}

// GetOrder возвращает заказ по идентификатору.
func (e *Engine) GetOrder(id string) (domain.Order, error) {
	return e.orders.Get(id)
}

// GetProduct возвращает товар по идентификатору.
func (e *Engine) GetProduct(id string) (domain.Product, error) {
	return e.products.Get(id)
}

// Transition применяет переход статуса заказа.
//
// Гарантии:
//   - самопереход — идемпотентный no-op без обращений к каталогу;
//   - переход вне таблицы — ErrInvalidTransition без побочных эффектов;
//   - списание проверяется по всем позициям до применения: либо применяются
//     все дельты и новый статус, либо ничего (ErrInsufficientStock);
//   - частично применённые дельты компенсируются при сбое на поздних шагах.
func (e *Engine) Transition(orderID string, newStatus domain.OrderStatus) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.RecordTransitionDuration(time.Since(start))
		}
	}()

	order, err := e.orders.Get(orderID)
	if err != nil {
		e.recordResult(resultFromError(err))
		return domain.Order{}, err
	}

	if order.Status == newStatus {
		e.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"status":   order.Status,
		}).Debug("self-transition, nothing to do")
		e.recordResult(resultNoop)
		return order, nil
	}

	if !newStatus.Valid() || !domain.CanTransition(order.Status, newStatus) {
		e.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"from":     order.Status,
			"to":       newStatus,
		}).Warn("transition rejected")
		e.recordResult(resultInvalidTransition)
		return domain.Order{}, domain.ErrInvalidTransition
	}

	sign := domain.StockDeltaSign(order.Status, newStatus)
	if sign == 0 {
		return e.commitStatus(order, newStatus)
	}

	// Суммируем требуемые единицы по товарам: заказ может содержать
	// несколько позиций одного товара.
	required := make(map[string]int32, len(order.Items))
	for _, item := range order.Items {
		required[item.ProductID] += item.Qty
	}
	ids := make([]string, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Валидация и применение дельт — одна атомарная секция относительно
	// товаров заказа: никакой другой переход не наблюдает промежуточное
	// состояние их остатков.
	unlock := e.locks.lockAll(ids)
	defer unlock()

	// Статус перечитывается под блокировкой: параллельный вызов мог успеть
	// применить тот же переход после проверки выше, и повторное списание
	// здесь задвоило бы складской эффект.
	order, err = e.orders.Get(orderID)
	if err != nil {
		e.recordResult(resultFromError(err))
		return domain.Order{}, err
	}
	if order.Status == newStatus {
		e.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"status":   order.Status,
		}).Debug("transition already applied concurrently")
		e.recordResult(resultNoop)
		return order, nil
	}
	if !domain.CanTransition(order.Status, newStatus) {
		e.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"from":     order.Status,
			"to":       newStatus,
		}).Warn("transition rejected after status re-read")
		e.recordResult(resultInvalidTransition)
		return domain.Order{}, domain.ErrInvalidTransition
	}
	if sign = domain.StockDeltaSign(order.Status, newStatus); sign == 0 {
		return e.commitStatus(order, newStatus)
	}

	if sign < 0 {
		for _, id := range ids {
			product, err := e.products.Get(id)
			if err != nil {
				e.logger.WithError(err).WithFields(log.Fields{
					"order_id":   order.ID,
					"product_id": id,
				}).Warn("stock validation failed")
				e.recordResult(resultFromError(err))
				return domain.Order{}, err
			}
			if product.Quantity < required[id] {
				e.logger.WithFields(log.Fields{
					"order_id":   order.ID,
					"product_id": id,
					"available":  product.Quantity,
					"required":   required[id],
				}).Warn("insufficient stock for order")
				e.recordResult(resultInsufficientStock)
				return domain.Order{}, domain.ErrInsufficientStock
			}
		}
	}

	applied := make([]string, 0, len(ids))
	for _, id := range ids {
		delta := int32(sign) * required[id]
		if _, err := e.products.AdjustQuantity(id, delta); err != nil {
			// Товар исчез или остаток изменился вопреки блокировке —
			// откатываем уже применённые дельты этого же вызова.
			e.logger.WithError(err).WithFields(log.Fields{
				"order_id":   order.ID,
				"product_id": id,
			}).Error("stock adjustment failed, compensating")
			e.compensate(order.ID, applied, required, -sign)
			e.recordResult(resultFromError(err))
			return domain.Order{}, err
		}
		applied = append(applied, id)
	}

	updated, err := e.orders.SetStatus(order.ID, newStatus)
	if err != nil {
		e.logger.WithError(err).WithField("order_id", order.ID).Error("status commit failed, compensating stock")
		e.compensate(order.ID, applied, required, -sign)
		e.recordResult(resultFromError(err))
		return domain.Order{}, err
	}

	var units int64
	for _, qty := range required {
		units += int64(qty)
	}
	if e.metrics != nil {
		if sign < 0 {
			e.metrics.RecordStockDeducted(units)
		} else {
			e.metrics.RecordStockRestored(units)
		}
	}

	e.recordResult(resultApplied)
	e.emitStatusEvent(updated, order.Status)
	e.emitStockEvent(updated.ID, sign, units)
	return updated, nil
}

// commitStatus фиксирует переход без складского эффекта.
func (e *Engine) commitStatus(order domain.Order, newStatus domain.OrderStatus) (domain.Order, error) {
	updated, err := e.orders.SetStatus(order.ID, newStatus)
	if err != nil {
		e.logger.WithError(err).WithField("order_id", order.ID).Error("status commit failed")
		e.recordResult(resultFromError(err))
		return domain.Order{}, err
	}
	e.recordResult(resultApplied)
	e.emitStatusEvent(updated, order.Status)
	return updated, nil
}

// compensate возвращает уже применённые дельты при сбое внутри перехода.
func (e *Engine) compensate(orderID string, applied []string, required map[string]int32, sign int) {
	for _, id := range applied {
		if _, err := e.products.AdjustQuantity(id, int32(sign)*required[id]); err != nil {
			e.logger.WithError(err).WithFields(log.Fields{
				"order_id":   orderID,
				"product_id": id,
			}).Error("stock compensation failed")
		}
	}
}

func (e *Engine) recordResult(result string) {
	if e.metrics != nil {
		e.metrics.RecordTransition(result)
	}
}

func resultFromError(err error) string {
	if domain.IsNotFound(err) {
		return resultNotFound
	}
	return resultError
}

// emitStatusEvent ставит событие смены статуса в outbox для публикации.
func (e *Engine) emitStatusEvent(order domain.Order, from domain.OrderStatus) {
	if e.outbox == nil {
		return
	}

	event := kafka.NewOrderEvent(kafka.EventTypeOrderStatusChanged, order.ID, string(order.Status), map[string]interface{}{
		"from": string(from),
	})
	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.WithError(err).WithField("order_id", order.ID).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(kafka.EventTypeOrderStatusChanged),
		Payload:       payload,
	}
	if _, err := e.outbox.Enqueue(msg); err != nil {
		e.logger.WithError(err).WithField("order_id", order.ID).Error("enqueue event failed")
		return
	}
	if e.metrics != nil {
		e.metrics.RecordOutboxEvent()
	}
}

// emitStockEvent ставит событие складского эффекта перехода в outbox.
// Ключом партиционирования остаётся идентификатор заказа.
func (e *Engine) emitStockEvent(orderID string, sign int, units int64) {
	if e.outbox == nil {
		return
	}

	eventType := kafka.EventTypeStockDeducted
	if sign > 0 {
		eventType = kafka.EventTypeStockRestored
	}
	payload, err := json.Marshal(kafka.NewStockEvent(eventType, orderID, units))
	if err != nil {
		e.logger.WithError(err).WithField("order_id", orderID).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "stock",
		AggregateID:   orderID,
		EventType:     string(eventType),
		Payload:       payload,
	}
	if _, err := e.outbox.Enqueue(msg); err != nil {
		e.logger.WithError(err).WithField("order_id", orderID).Error("enqueue event failed")
		return
	}
	if e.metrics != nil {
		e.metrics.RecordOutboxEvent()
	}
}
