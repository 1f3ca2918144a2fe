package orders_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/backoffice/internal/service/orders"
	"github.com/vladislavdragonenkov/backoffice/internal/storage/memory"
)

type fixture struct {
	svc      *orders.Service
	products domain.ProductRepository
	orders   domain.OrderRepository
	outbox   domain.OutboxRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := memory.NewProductRepository()
	orderRepo := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()

	now := time.Now().UTC()
	require.NoError(t, products.Create(domain.Product{
		ID:         "product-1",
		Name:       "Laptop Dell XPS 13",
		Category:   "Laptops",
		PriceMinor: 2500000000,
		Quantity:   15,
		CreatedAt:  now,
		UpdatedAt:  now,
	}))

	return &fixture{
		svc:      orders.NewService(orderRepo, products, outbox, nil),
		products: products,
		orders:   orderRepo,
		outbox:   outbox,
	}
}

func validDraft() orders.Draft {
	return orders.Draft{
		CustomerName: "Nguyen Van A",
		Phone:        "0912345678",
		Address:      "123 Nguyen Hue, Q1",
		Items:        []orders.DraftItem{{ProductID: "product-1", Qty: 2}},
	}
}

func TestCreateOrder_SnapshotsCatalog(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(validDraft())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Laptop Dell XPS 13", order.Items[0].ProductName)
	assert.Equal(t, int64(2500000000), order.Items[0].PriceMinor)
	assert.Equal(t, int64(2)*2500000000, order.AmountMinor)

	// Создание заказа не трогает остаток: списание — при завершении.
	product, err := f.products.Get("product-1")
	require.NoError(t, err)
	assert.Equal(t, int32(15), product.Quantity)
}

func TestCreateOrder_SnapshotSurvivesCatalogEdits(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(validDraft())
	require.NoError(t, err)

	// Правим цену и имя товара после создания заказа.
	product, err := f.products.Get("product-1")
	require.NoError(t, err)
	product.Name = "Laptop Dell XPS 13 (2025)"
	product.PriceMinor = 2700000000
	require.NoError(t, f.products.Update(product))

	stored, err := f.svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laptop Dell XPS 13", stored.Items[0].ProductName)
	assert.Equal(t, int64(2500000000), stored.Items[0].PriceMinor)
	assert.Equal(t, order.AmountMinor, stored.AmountMinor)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		mut  func(d *orders.Draft)
		want error
	}{
		{
			name: "no customer name",
			mut:  func(d *orders.Draft) { d.CustomerName = "" },
			want: domain.ErrCustomerNameRequired,
		},
		{
			name: "no phone",
			mut:  func(d *orders.Draft) { d.Phone = "" },
			want: domain.ErrPhoneRequired,
		},
		{
			name: "no address",
			mut:  func(d *orders.Draft) { d.Address = "" },
			want: domain.ErrAddressRequired,
		},
		{
			name: "no items",
			mut:  func(d *orders.Draft) { d.Items = nil },
			want: domain.ErrItemsRequired,
		},
		{
			name: "zero qty",
			mut:  func(d *orders.Draft) { d.Items[0].Qty = 0 },
			want: domain.ErrItemQtyInvalid,
		},
		{
			name: "unknown product",
			mut:  func(d *orders.Draft) { d.Items[0].ProductID = "missing" },
			want: domain.ErrProductNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := validDraft()
			tc.mut(&draft)

			_, err := f.svc.CreateOrder(draft)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateOrder_EmitsCreatedEvent(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(validDraft())
	require.NoError(t, err)

	pending, err := f.outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, string(kafka.EventTypeOrderCreated), pending[0].EventType)
	assert.Equal(t, order.ID, pending[0].AggregateID)
}

func TestListOrders_NewestFirst(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.CreateOrder(validDraft())
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(validDraft())
	require.NoError(t, err)

	list, err := f.svc.ListOrders(0)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Более поздний заказ идёт первым (UTC-таймстемпы монотонны в рамках теста).
	ids := []string{list[0].ID, list[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}
