package domain

import "time"

// OrderStatus описывает жизненный цикл заказа в back-office.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, обработка ещё не началась.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusShipping — заказ передан в доставку.
	OrderStatusShipping OrderStatus = "shipping"
	// OrderStatusCompleted — заказ доставлен, товар списан со склада.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// String возвращает строковое представление статуса.
func (s OrderStatus) String() string { return string(s) }

// Valid проверяет, что статус входит в известный набор.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipping, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// allowedTransitions — закрытая таблица переходов статусов.
// Любой переход вне таблицы отклоняется движком с ErrInvalidTransition.
// Из cancelled выхода нет, пути "расзавершения" (completed -> pending или
// completed -> shipping) не существует: единственный выход из completed —
// отмена с возвратом товара на склад.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusShipping, OrderStatusCancelled},
	OrderStatusShipping:  {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted: {OrderStatusCancelled},
	OrderStatusCancelled: {},
}

// CanTransition проверяет допустимость перехода from -> to по таблице.
// Самопереход (from == to) таблицей не описывается: движок трактует его
// как идемпотентный no-op до обращения к таблице.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StockDeltaSign возвращает знак складского эффекта перехода:
// -1 — вход в completed (списание), +1 — выход из completed (возврат),
// 0 — переход без складского эффекта.
func StockDeltaSign(from, to OrderStatus) int {
	switch {
	case from != OrderStatusCompleted && to == OrderStatusCompleted:
		return -1
	case from == OrderStatusCompleted && to != OrderStatusCompleted:
		return 1
	default:
		return 0
	}
}

// OrderLineItem представляет одну позицию заказа.
// ProductName и PriceMinor — снимок каталога на момент создания заказа;
// последующие правки товара позицию не затрагивают.
type OrderLineItem struct {
	// ProductID — слабая ссылка на товар каталога (по идентификатору).
	ProductID string
	// ProductName — имя товара на момент создания заказа.
	ProductName string
	// Qty — количество единиц товара.
	Qty int32
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
}

// Order агрегирует заказ покупателя и его позиции.
type Order struct {
	ID           string
	CustomerName string
	Phone        string
	Address      string
	Status       OrderStatus
	// AmountMinor — сумма qty * price по позициям, зафиксированная при
	// создании; после создания не пересчитывается.
	AmountMinor int64
	Items       []OrderLineItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerName == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if o.Phone == "" {
		errs = append(errs, ErrPhoneRequired)
	}
	if o.Address == "" {
		errs = append(errs, ErrAddressRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrStatusUnknown)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	var calc int64
	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += int64(item.Qty) * item.PriceMinor
	}
	if calc != o.AmountMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
