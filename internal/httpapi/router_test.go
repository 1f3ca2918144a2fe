package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/backoffice/internal/service/catalog"
	"github.com/vladislavdragonenkov/backoffice/internal/service/fulfillment"
	"github.com/vladislavdragonenkov/backoffice/internal/service/orders"
	"github.com/vladislavdragonenkov/backoffice/internal/service/reports"
	"github.com/vladislavdragonenkov/backoffice/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	products := memory.NewProductRepository()
	ordersRepo := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()

	handler := NewHandler(
		catalog.NewService(products, nil),
		orders.NewService(ordersRepo, products, outbox, nil),
		fulfillment.NewEngineWithoutMetrics(ordersRepo, products, outbox, nil),
		reports.NewService(products, ordersRepo, nil),
		nil,
	)

	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func createProduct(t *testing.T, server *httptest.Server, name string, priceMinor int64, quantity int32) productResponse {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, server.URL+"/products", productRequest{
		Name:       name,
		Category:   "electronics",
		PriceMinor: priceMinor,
		Quantity:   quantity,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var product productResponse
	require.NoError(t, json.Unmarshal(body, &product))
	return product
}

func createOrder(t *testing.T, server *httptest.Server, items []orderItemRequest) orderResponse {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, server.URL+"/orders", orderRequest{
		CustomerName: "Ivan Petrov",
		Phone:        "+79990001122",
		Address:      "Moscow, Tverskaya 1",
		Items:        items,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var order orderResponse
	require.NoError(t, json.Unmarshal(body, &order))
	return order
}

func transition(t *testing.T, server *httptest.Server, orderID, status string) (*http.Response, []byte) {
	t.Helper()
	return doJSON(t, http.MethodPost, fmt.Sprintf("%s/orders/%s/status", server.URL, orderID), transitionRequest{Status: status})
}

func TestProductCRUD(t *testing.T) {
	server := newTestServer(t)

	product := createProduct(t, server, "iPhone 15", 7999000, 10)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, int32(10), product.Quantity)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/products/"+product.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched productResponse
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, product.ID, fetched.ID)

	resp, body = doJSON(t, http.MethodPut, server.URL+"/products/"+product.ID, productRequest{
		Name:       "iPhone 15 Pro",
		Category:   "electronics",
		PriceMinor: 9999000,
		Quantity:   8,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/products/"+product.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/products/"+product.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateProduct_ValidationError(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/products", productRequest{
		Name:       "",
		Category:   "electronics",
		PriceMinor: 100,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrder_SnapshotsCatalog(t *testing.T) {
	server := newTestServer(t)
	product := createProduct(t, server, "MacBook Air", 11999000, 5)

	order := createOrder(t, server, []orderItemRequest{{ProductID: product.ID, Qty: 2}})
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, int64(2*11999000), order.AmountMinor)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "MacBook Air", order.Items[0].ProductName)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/orders", orderRequest{
		CustomerName: "Ivan Petrov",
		Phone:        "+79990001122",
		Address:      "Moscow",
		Items:        []orderItemRequest{{ProductID: "missing", Qty: 1}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTransition_HappyPathDeductsStock(t *testing.T) {
	server := newTestServer(t)
	product := createProduct(t, server, "AirPods", 1999000, 10)
	order := createOrder(t, server, []orderItemRequest{{ProductID: product.ID, Qty: 3}})

	resp, _ := transition(t, server, order.ID, "shipping")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := transition(t, server, order.ID, "completed")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var completed orderResponse
	require.NoError(t, json.Unmarshal(body, &completed))
	assert.Equal(t, "completed", completed.Status)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/products/"+product.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched productResponse
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, int32(7), fetched.Quantity)
}

func TestTransition_InvalidTransitionConflict(t *testing.T) {
	server := newTestServer(t)
	product := createProduct(t, server, "iPad", 5999000, 10)
	order := createOrder(t, server, []orderItemRequest{{ProductID: product.ID, Qty: 1}})

	resp, _ := transition(t, server, order.ID, "completed")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTransition_InsufficientStock(t *testing.T) {
	server := newTestServer(t)
	product := createProduct(t, server, "Apple Watch", 3999000, 2)
	order := createOrder(t, server, []orderItemRequest{{ProductID: product.ID, Qty: 5}})

	resp, _ := transition(t, server, order.ID, "shipping")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = transition(t, server, order.ID, "completed")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Остаток не изменился после отказа.
	resp, body := doJSON(t, http.MethodGet, server.URL+"/products/"+product.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched productResponse
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, int32(2), fetched.Quantity)
}

func TestTransition_UnknownStatus(t *testing.T) {
	server := newTestServer(t)
	product := createProduct(t, server, "HomePod", 2999000, 3)
	order := createOrder(t, server, []orderItemRequest{{ProductID: product.ID, Qty: 1}})

	resp, _ := transition(t, server, order.ID, "archived")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTransition_OrderNotFound(t *testing.T) {
	server := newTestServer(t)

	resp, _ := transition(t, server, "missing-order", "shipping")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListOrders_LimitValidation(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/orders?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/orders?limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []orderResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list)
}

func TestDashboard(t *testing.T) {
	server := newTestServer(t)
	product := createProduct(t, server, "Cable", 99000, 3)
	order := createOrder(t, server, []orderItemRequest{{ProductID: product.ID, Qty: 1}})

	resp, _ := transition(t, server, order.ID, "shipping")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = transition(t, server, order.ID, "completed")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary struct {
		TotalProducts       int            `json:"total_products"`
		TotalOrders         int            `json:"total_orders"`
		RevenueMinor        int64          `json:"revenue_minor"`
		InventoryValueMinor int64          `json:"inventory_value_minor"`
		OrdersByStatus      map[string]int `json:"orders_by_status"`
	}
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 1, summary.TotalProducts)
	assert.Equal(t, 1, summary.TotalOrders)
	assert.Equal(t, int64(99000), summary.RevenueMinor)
	// После завершения заказа на складе осталось 2 единицы по 99000.
	assert.Equal(t, int64(2*99000), summary.InventoryValueMinor)
	assert.Equal(t, 1, summary.OrdersByStatus["completed"])
}
