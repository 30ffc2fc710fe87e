package checkout

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Abhijith1905/csp-storefront/internal/cart"
	"github.com/Abhijith1905/csp-storefront/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderGateway submits an order to the remote order API and returns the
// server-assigned order id.
type OrderGateway interface {
	Submit(ctx context.Context, order domain.Order) (string, error)
}

// History is the append-only local order record. Pending returns orders
// whose remote submission has not landed yet; MarkSubmitted flips one to
// submitted exactly once.
type History interface {
	Append(ctx context.Context, order domain.Order) error
	List(ctx context.Context) ([]domain.Order, error)
	Pending(ctx context.Context) ([]domain.Order, error)
	MarkSubmitted(ctx context.Context, localID, remoteID string) error
}

// Orchestrator converts the current cart into an order. Remote submission
// failure is not surfaced as a checkout failure: the order is recorded
// locally as pending and the cart is cleared either way. The pending
// poller re-submits afterwards.
type Orchestrator struct {
	mu      sync.Mutex
	cart    *cart.Store
	gateway OrderGateway
	history History
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
	newID   func() string
}

func NewOrchestrator(cartStore *cart.Store, gateway OrderGateway, history History, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cart:    cartStore,
		gateway: gateway,
		history: history,
		logger:  logger,
		timeout: 15 * time.Second,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

var expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)

func validatePayment(p domain.PaymentDetails) error {
	var fields []string
	if !isDigits(strings.ReplaceAll(p.CardNumber, " ", ""), 16) {
		fields = append(fields, "cardNumber")
	}
	if !expiryPattern.MatchString(p.Expiry) {
		fields = append(fields, "expiry")
	}
	if !isDigits(p.CVV, 3) {
		fields = append(fields, "cvv")
	}
	if strings.TrimSpace(p.CardholderName) == "" {
		fields = append(fields, "name")
	}
	if len(fields) > 0 {
		return &InvalidPaymentError{Fields: fields}
	}
	return nil
}

func isDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Submit validates the cart and payment, then attempts remote submission.
// Success yields a submitted order; remote failure yields a pending-local
// order with a generated id. Both paths clear the cart and append exactly
// one history entry. Attempts are serialized: the first one to run clears
// the cart, so a concurrent second click finds it empty instead of
// recording the same checkout twice.
func (o *Orchestrator) Submit(ctx context.Context, principal domain.Principal, payment domain.PaymentDetails) (domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := o.cart.Snapshot()
	if len(snap.Lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	if err := validatePayment(payment); err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:        o.newID(),
		Lines:     orderLines(snap.Lines),
		Totals:    ComputeTotals(snap.Lines),
		CreatedAt: o.now(),
	}
	if principal.Identified() {
		order.OwnerSubjectID = principal.SubjectID
		order.OwnerEmail = principal.Email
	}

	sctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	remoteID, err := o.gateway.Submit(sctx, order)
	if err != nil {
		o.logger.Warn("order submission failed, recording pending order",
			zap.String("order_id", order.ID), zap.Error(err))
		order.Status = domain.OrderStatusPendingLocal
	} else {
		order.Status = domain.OrderStatusSubmitted
		order.RemoteID = remoteID
	}

	if err := o.history.Append(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("record order: %w", err)
	}
	o.cart.Clear(ctx)
	return order, nil
}

// Orders returns the local order history, newest first, optionally scoped
// to one owner.
func (o *Orchestrator) Orders(ctx context.Context, ownerSubjectID string) ([]domain.Order, error) {
	orders, err := o.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if ownerSubjectID == "" {
		return orders, nil
	}
	filtered := orders[:0]
	for _, ord := range orders {
		if ord.OwnerSubjectID == ownerSubjectID {
			filtered = append(filtered, ord)
		}
	}
	return filtered, nil
}

func orderLines(lines []domain.CartLine) []domain.OrderLine {
	out := make([]domain.OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.OrderLine{
			ProductID:   l.ProductID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return out
}
