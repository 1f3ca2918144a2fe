package fulfillment

import (
	"sort"
	"sync"
)

// productLocks сериализует складские операции по товарам.
// Мьютексы живут столько же, сколько движок: ключей не больше, чем товаров
// в каталоге, поэтому очистка не требуется.
type productLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newProductLocks() *productLocks {
	return &productLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *productLocks) get(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// lockAll захватывает мьютексы всех указанных товаров в отсортированном
// порядке ID. Фиксированный порядок исключает deadlock, когда два заказа
// делят товары. Возвращает функцию освобождения в обратном порядке.
func (l *productLocks) lockAll(ids []string) func() {
	sorted := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	acquired := make([]*sync.Mutex, 0, len(sorted))
	for _, id := range sorted {
		m := l.get(id)
		m.Lock()
		acquired = append(acquired, m)
	}

	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}
