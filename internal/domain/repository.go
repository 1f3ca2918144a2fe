package domain

// ProductRepository описывает требования к хранилищу каталога.
type ProductRepository interface {
	// Create сохраняет новый товар. Возвращает ErrProductExists, если ID занят.
	Create(product Product) error
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	// List возвращает товары каталога, отсортированные по имени.
	List() ([]Product, error)
	// Update перезаписывает описательные поля товара (имя, категорию, цену,
	// остаток при ручной корректировке каталога).
	Update(product Product) error
	// Delete удаляет товар. Исторические заказы хранят снимок позиции
	// и удалением не затрагиваются.
	Delete(id string) error
	// AdjustQuantity применяет quantity += delta и возвращает обновлённый
	// товар. Если результат отрицательный, возвращает ErrInsufficientStock,
	// не меняя остаток. Delta может быть положительной (возврат) и
	// отрицательной (списание).
	AdjustQuantity(id string, delta int32) (Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ErrOrderExists, если ID занят.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(id string) (Order, error)
	// List возвращает заказы от новых к старым с опциональным лимитом.
	List(limit int) ([]Order, error)
	// SetStatus обновляет поле статуса без бизнес-валидации; легальность
	// перехода — зона ответственности движка. Возвращает обновлённый заказ.
	SetStatus(id string, status OrderStatus) (Order, error)
}
