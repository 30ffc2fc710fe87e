package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Abhijith1905/csp-storefront/internal/cart"
	"github.com/Abhijith1905/csp-storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopRemote struct{}

func (nopRemote) GetCart(context.Context) ([]domain.CartLine, error) { return nil, nil }
func (nopRemote) AddItem(context.Context, domain.CartLine) error     { return nil }
func (nopRemote) UpdateQuantity(context.Context, string, int) error  { return nil }
func (nopRemote) RemoveItem(context.Context, string) error           { return nil }
func (nopRemote) Clear(context.Context) error                        { return nil }

type nopLocal struct{}

func (nopLocal) Load(context.Context) ([]domain.CartLine, error) { return nil, nil }
func (nopLocal) Save(context.Context, []domain.CartLine) error   { return nil }

type mockOrderGateway struct {
	m         sync.Mutex
	remoteID  string
	err       error
	delay     time.Duration
	submitted []domain.Order
}

func (m *mockOrderGateway) Submit(_ context.Context, order domain.Order) (string, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.submitted = append(m.submitted, order)
	return m.remoteID, nil
}

type mockHistory struct {
	m      sync.Mutex
	orders []domain.Order
	err    error
}

func (m *mockHistory) Append(_ context.Context, order domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockHistory) List(context.Context) ([]domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]domain.Order{}, m.orders...), m.err
}

func (m *mockHistory) Pending(context.Context) ([]domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.Status == domain.OrderStatusPendingLocal {
			out = append(out, o)
		}
	}
	return out, m.err
}

func (m *mockHistory) MarkSubmitted(_ context.Context, localID, remoteID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == localID {
			m.orders[i].Status = domain.OrderStatusSubmitted
			m.orders[i].RemoteID = remoteID
			return nil
		}
	}
	return errors.New("order not found")
}

func cartWith(t *testing.T, lines ...domain.CartLine) *cart.Store {
	t.Helper()
	store := cart.NewStore(nopRemote{}, nopLocal{}, zap.NewNop())
	for _, l := range lines {
		store.AddItem(context.Background(), l.ProductID, l.Quantity, l.UnitPrice, l.Product)
	}
	return store
}

func line(id string, qty int, price string) domain.CartLine {
	return domain.CartLine{
		ProductID: id,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
		Product:   domain.ProductSnapshot{Name: "product " + id},
	}
}

func validPayment() domain.PaymentDetails {
	return domain.PaymentDetails{
		CardNumber:     "4111111111111111",
		Expiry:         "12/27",
		CVV:            "123",
		CardholderName: "Jane Doe",
	}
}

func customer() domain.Principal {
	return domain.Principal{
		Kind:      domain.PrincipalIdentified,
		SubjectID: "user-1",
		Email:     "user-1@example.com",
		Role:      domain.RoleCustomer,
	}
}

func TestComputeTotals_BelowFreeShippingThreshold(t *testing.T) {
	totals := ComputeTotals([]domain.CartLine{line("p1", 4, "10.00")})

	subtotal, shipping, tax, grand := totals.Display()
	assert.Equal(t, "40.00", subtotal)
	assert.Equal(t, "9.99", shipping)
	assert.Equal(t, "3.20", tax)
	assert.Equal(t, "53.19", grand)
}

func TestComputeTotals_AboveFreeShippingThreshold(t *testing.T) {
	totals := ComputeTotals([]domain.CartLine{line("p1", 3, "20.00")})

	subtotal, shipping, tax, grand := totals.Display()
	assert.Equal(t, "60.00", subtotal)
	assert.Equal(t, "0.00", shipping)
	assert.Equal(t, "4.80", tax)
	assert.Equal(t, "64.80", grand)
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(nil)
	assert.True(t, totals.Subtotal.IsZero())
	// An empty cart still carries the flat fee formally, but checkout
	// rejects empty carts before totals ever matter.
	assert.True(t, totals.Shipping.Equal(flatShippingFee))
}

func TestSubmit_EmptyCart_FailsAndCartUnchanged(t *testing.T) {
	store := cartWith(t)
	sut := NewOrchestrator(store, &mockOrderGateway{}, &mockHistory{}, zap.NewNop())

	_, err := sut.Submit(context.Background(), customer(), validPayment())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, store.Snapshot().Lines)
}

func TestSubmit_InvalidPayment_ListsFailedFields(t *testing.T) {
	store := cartWith(t, line("p1", 1, "10.00"))
	sut := NewOrchestrator(store, &mockOrderGateway{}, &mockHistory{}, zap.NewNop())

	payment := domain.PaymentDetails{
		CardNumber:     "4111",
		Expiry:         "13-2027",
		CVV:            "12",
		CardholderName: "",
	}
	_, err := sut.Submit(context.Background(), customer(), payment)

	var invalid *InvalidPaymentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"cardNumber", "expiry", "cvv", "name"}, invalid.Fields)
	// Validation failure leaves the cart alone.
	assert.Len(t, store.Snapshot().Lines, 1)
}

func TestSubmit_CardNumberWithSpaces_IsAccepted(t *testing.T) {
	store := cartWith(t, line("p1", 1, "10.00"))
	sut := NewOrchestrator(store, &mockOrderGateway{remoteID: "ord-1"}, &mockHistory{}, zap.NewNop())

	payment := validPayment()
	payment.CardNumber = "4111 1111 1111 1111"
	_, err := sut.Submit(context.Background(), customer(), payment)

	require.NoError(t, err)
}

func TestSubmit_RemoteSuccess(t *testing.T) {
	store := cartWith(t, line("p1", 2, "10.00"))
	gateway := &mockOrderGateway{remoteID: "ord-42"}
	history := &mockHistory{}
	sut := NewOrchestrator(store, gateway, history, zap.NewNop())

	order, err := sut.Submit(context.Background(), customer(), validPayment())
	require.NoError(t, err)
	store.Wait()

	assert.Equal(t, domain.OrderStatusSubmitted, order.Status)
	assert.Equal(t, "ord-42", order.RemoteID)
	assert.Equal(t, "user-1", order.OwnerSubjectID)
	assert.Empty(t, store.Snapshot().Lines, "cart is cleared after checkout")

	orders, err := history.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1, "order appears in history exactly once")
}

func TestSubmit_RemoteFailure_DegradesToPendingLocal(t *testing.T) {
	store := cartWith(t, line("p1", 2, "10.00"))
	gateway := &mockOrderGateway{err: errors.New("network unreachable")}
	history := &mockHistory{}
	sut := NewOrchestrator(store, gateway, history, zap.NewNop())

	order, err := sut.Submit(context.Background(), customer(), validPayment())
	require.NoError(t, err, "submission failure is not surfaced as a checkout failure")

	assert.Equal(t, domain.OrderStatusPendingLocal, order.Status)
	assert.NotEmpty(t, order.ID)
	assert.Empty(t, order.RemoteID)
	assert.Empty(t, store.Snapshot().Lines, "cart is still cleared")

	orders, err := history.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	// A second checkout click finds an empty cart, so nothing duplicates.
	_, err = sut.Submit(context.Background(), customer(), validPayment())
	assert.ErrorIs(t, err, ErrEmptyCart)
	orders, _ = history.List(context.Background())
	assert.Len(t, orders, 1)
}

func TestSubmit_ConcurrentClicks_RecordOneOrder(t *testing.T) {
	store := cartWith(t, line("p1", 1, "10.00"))
	gateway := &mockOrderGateway{remoteID: "ord-42", delay: 50 * time.Millisecond}
	history := &mockHistory{}
	sut := NewOrchestrator(store, gateway, history, zap.NewNop())

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sut.Submit(context.Background(), customer(), validPayment())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// One click wins and clears the cart; the other finds it empty.
	var empty, ok int
	for err := range errs {
		switch {
		case errors.Is(err, ErrEmptyCart):
			empty++
		case err == nil:
			ok++
		default:
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, empty)

	gateway.m.Lock()
	assert.Len(t, gateway.submitted, 1, "remote sees the order exactly once")
	gateway.m.Unlock()

	orders, err := history.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1, "history records the checkout exactly once")
}

func TestOrders_FiltersByOwner(t *testing.T) {
	history := &mockHistory{orders: []domain.Order{
		{ID: "a", OwnerSubjectID: "user-1", Status: domain.OrderStatusSubmitted},
		{ID: "b", OwnerSubjectID: "user-2", Status: domain.OrderStatusSubmitted},
		{ID: "c", OwnerSubjectID: "user-1", Status: domain.OrderStatusPendingLocal},
	}}
	sut := NewOrchestrator(cartWith(t), &mockOrderGateway{}, history, zap.NewNop())

	orders, err := sut.Orders(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "a", orders[0].ID)
	assert.Equal(t, "c", orders[1].ID)
}

func TestPoller_FlushPending_ConfirmsOrder(t *testing.T) {
	history := &mockHistory{orders: []domain.Order{
		{ID: "local-1", Status: domain.OrderStatusPendingLocal, CreatedAt: time.Now()},
	}}
	gateway := &mockOrderGateway{remoteID: "ord-7"}
	sut := NewPoller(history, gateway, zap.NewNop(), time.Minute)

	sut.flushPending(context.Background())

	pending, err := history.Pending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	orders, _ := history.List(context.Background())
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusSubmitted, orders[0].Status)
	assert.Equal(t, "ord-7", orders[0].RemoteID)
}

func TestPoller_FlushPending_KeepsOrderWhenRemoteStillDown(t *testing.T) {
	history := &mockHistory{orders: []domain.Order{
		{ID: "local-1", Status: domain.OrderStatusPendingLocal, CreatedAt: time.Now()},
	}}
	gateway := &mockOrderGateway{err: errors.New("still down")}
	sut := NewPoller(history, gateway, zap.NewNop(), time.Minute)
	sut.maxTries = 1 // keep the test fast

	sut.flushPending(context.Background())

	pending, err := history.Pending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
