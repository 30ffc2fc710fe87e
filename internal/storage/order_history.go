package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Abhijith1905/csp-storefront/internal/domain"
	"github.com/spf13/afero"
)

// OrderHistory is the append-only local order record. Entries are never
// deleted; a pending order only ever changes by being marked submitted.
type OrderHistory struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func NewOrderHistory(fs afero.Fs, dir string) *OrderHistory {
	return &OrderHistory{fs: fs, path: filepath.Join(dir, ordersFile)}
}

func (h *OrderHistory) Append(_ context.Context, order domain.Order) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	orders, err := h.loadLocked()
	if err != nil {
		return err
	}
	for _, existing := range orders {
		if existing.ID == order.ID {
			return fmt.Errorf("order %s already recorded", order.ID)
		}
	}
	orders = append(orders, order)
	return writeJSON(h.fs, h.path, orders)
}

// List returns all recorded orders, newest first.
func (h *OrderHistory) List(_ context.Context) ([]domain.Order, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	orders, err := h.loadLocked()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (h *OrderHistory) Pending(_ context.Context) ([]domain.Order, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	orders, err := h.loadLocked()
	if err != nil {
		return nil, err
	}
	var pending []domain.Order
	for _, o := range orders {
		if o.Status == domain.OrderStatusPendingLocal {
			pending = append(pending, o)
		}
	}
	return pending, nil
}

// MarkSubmitted flips a pending order to submitted. Marking an order that
// is already submitted is a no-op, so a poller race cannot double-confirm.
func (h *OrderHistory) MarkSubmitted(_ context.Context, localID, remoteID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	orders, err := h.loadLocked()
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].ID != localID {
			continue
		}
		if orders[i].Status == domain.OrderStatusSubmitted {
			return nil
		}
		orders[i].Status = domain.OrderStatusSubmitted
		orders[i].RemoteID = remoteID
		return writeJSON(h.fs, h.path, orders)
	}
	return fmt.Errorf("order %s not found", localID)
}

func (h *OrderHistory) loadLocked() ([]domain.Order, error) {
	var orders []domain.Order
	if _, err := readJSON(h.fs, h.path, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
