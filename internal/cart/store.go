package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Abhijith1905/csp-storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrRemoteRejected marks a remote cart mutation failure. It never crosses
// the store boundary; callers of mutation operations only ever see the
// optimistic local result, and divergence is healed by reconciliation.
var ErrRemoteRejected = errors.New("remote cart rejected mutation")

// syncFailureThreshold is how many consecutive reconciliation failures it
// takes before the snapshot carries a visible "cart sync failed" notice.
const syncFailureThreshold = 3

// RemoteGateway wraps the REST cart endpoints. All calls carry the bearer
// credential of the current session.
type RemoteGateway interface {
	GetCart(ctx context.Context) ([]domain.CartLine, error)
	AddItem(ctx context.Context, line domain.CartLine) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	RemoveItem(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
}

// LocalPersistence is durable local storage for the guest cart. Saving an
// empty slice clears it.
type LocalPersistence interface {
	Load(ctx context.Context) ([]domain.CartLine, error)
	Save(ctx context.Context, lines []domain.CartLine) error
}

// Snapshot is the read model emitted to subscribers on every state change.
type Snapshot struct {
	Lines      []domain.CartLine
	Subtotal   decimal.Decimal
	ItemCount  int
	Origin     domain.CartOrigin
	SyncFailed bool
}

// Store keeps the in-memory cart consistent across guest storage, the
// remote cart service and optimistic UI updates. Mutations apply locally
// first; when the cart is account-origin they are then submitted to the
// remote gateway, and a rejected submission schedules a reconciliation
// instead of rolling the optimistic change back. The user may briefly see
// a cart the server disagrees with; the next reconciliation collapses the
// difference. That eventual-consistency window is accepted behavior.
type Store struct {
	mu       sync.Mutex
	cart     *domain.Cart
	version  uint64
	failures int
	synced   bool

	remote RemoteGateway
	local  LocalPersistence
	logger *zap.Logger

	group         singleflight.Group
	inflight      sync.WaitGroup
	submitTimeout time.Duration

	subscribers []func(Snapshot)
}

func NewStore(remote RemoteGateway, local LocalPersistence, logger *zap.Logger) *Store {
	return &Store{
		cart:          domain.NewCart(domain.OriginGuest),
		remote:        remote,
		local:         local,
		logger:        logger,
		synced:        true,
		submitTimeout: 10 * time.Second,
	}
}

// Subscribe registers a snapshot callback; it fires after every mutation,
// reconciliation and origin switch, outside the store lock.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LoadGuest reads the persisted guest cart into memory. Used at startup
// before any principal is known.
func (s *Store) LoadGuest(ctx context.Context) error {
	lines, err := s.local.Load(ctx)
	if err != nil {
		return fmt.Errorf("load guest cart: %w", err)
	}

	s.mu.Lock()
	s.cart = domain.NewCart(domain.OriginGuest)
	s.cart.Replace(lines)
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// AddItem merges quantity into an existing line for the product or creates
// a new line priced at add time. Quantities below 1 are ignored.
func (s *Store) AddItem(ctx context.Context, productID string, quantity int, unitPrice decimal.Decimal, product domain.ProductSnapshot) {
	if quantity < 1 {
		return
	}
	line := domain.CartLine{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Product:   product,
	}
	s.mutate(ctx, func(c *domain.Cart) { c.AddLine(line) }, func(ctx context.Context) error {
		return s.remote.AddItem(ctx, line)
	})
}

// SetQuantity sets the absolute quantity for a line; zero or negative
// input removes it.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) {
	if quantity < 0 {
		quantity = 0
	}
	if quantity == 0 {
		s.RemoveItem(ctx, productID)
		return
	}
	s.mutate(ctx, func(c *domain.Cart) { c.SetQuantity(productID, quantity) }, func(ctx context.Context) error {
		return s.remote.UpdateQuantity(ctx, productID, quantity)
	})
}

// RemoveItem is idempotent; removing an absent product succeeds.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mutate(ctx, func(c *domain.Cart) { c.RemoveLine(productID) }, func(ctx context.Context) error {
		return s.remote.RemoveItem(ctx, productID)
	})
}

// Clear empties the cart; checkout calls this after building its order.
func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, func(c *domain.Cart) { c.Clear() }, func(ctx context.Context) error {
		return s.remote.Clear(ctx)
	})
}

// mutate applies the optimistic change under the lock, persists or submits
// according to origin, and notifies subscribers with the new snapshot.
func (s *Store) mutate(ctx context.Context, apply func(*domain.Cart), submit func(context.Context) error) {
	s.mu.Lock()
	apply(s.cart)
	s.version++
	version := s.version
	origin := s.cart.Origin
	var lines []domain.CartLine
	if origin == domain.OriginGuest {
		lines = s.cart.Lines()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)

	switch origin {
	case domain.OriginGuest:
		if err := s.local.Save(ctx, lines); err != nil {
			s.logger.Warn("persisting guest cart failed", zap.Error(err))
		}
	case domain.OriginAccount:
		s.submitAsync(version, submit)
	}
}

// submitAsync runs a remote submission tagged with the cart version it was
// derived from. Responses do not apply state: a success needs nothing, and
// a rejection (or timeout, treated identically) schedules reconciliation,
// so a stale response can never overwrite newer optimistic state.
func (s *Store) submitAsync(version uint64, submit func(context.Context) error) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.submitTimeout)
		defer cancel()

		if err := submit(ctx); err != nil {
			s.logger.Warn("remote cart mutation rejected, reconciling",
				zap.Uint64("cart_version", version),
				zap.Error(fmt.Errorf("%w: %v", ErrRemoteRejected, err)))
			rctx, rcancel := context.WithTimeout(context.Background(), s.submitTimeout)
			defer rcancel()
			_ = s.ReconcileWithRemote(rctx)
		}
	}()
}

// Wait blocks until every in-flight remote submission (and any
// reconciliation it scheduled) has finished.
func (s *Store) Wait() {
	s.inflight.Wait()
}

// ReconcileWithRemote fetches the authoritative server cart and replaces
// the local line set wholesale. Concurrent calls share one fetch; a fetch
// that lands after further local mutations is discarded and retried so it
// can never clobber newer optimistic state.
func (s *Store) ReconcileWithRemote(ctx context.Context) error {
	for {
		s.mu.Lock()
		started := s.version
		s.mu.Unlock()

		result, err, _ := s.group.Do("reconcile", func() (any, error) {
			return s.remote.GetCart(ctx)
		})
		if err != nil {
			s.recordReconcileFailure(err)
			return fmt.Errorf("reconcile cart: %w", err)
		}
		lines := result.([]domain.CartLine)

		s.mu.Lock()
		if s.version != started {
			s.mu.Unlock()
			continue // superseded while fetching, fetch again
		}
		s.cart.Replace(lines)
		s.version++
		s.failures = 0
		s.synced = true
		snap := s.snapshotLocked()
		s.mu.Unlock()

		s.notify(snap)
		return nil
	}
}

func (s *Store) recordReconcileFailure(err error) {
	s.mu.Lock()
	s.failures++
	failures := s.failures
	notice := failures >= syncFailureThreshold && s.synced
	if notice {
		s.synced = false
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Warn("cart reconciliation failed",
		zap.Int("consecutive_failures", failures),
		zap.Error(err))
	if notice {
		s.notify(snap)
	}
}

// ActivateAccount moves the cart to account origin after sign-in: every
// guest line is pushed to the remote cart with merge semantics (a
// pre-existing remote cart is never overwritten), guest storage is
// cleared, then the server copy is pulled as the authoritative state.
// The origin flips before the pull: if the reconcile fails on a transient
// outage the cart is already account-origin with the guest lines as its
// optimistic state, so every later mutation submits remotely and the
// rejection path re-reconciles, instead of the session silently staying
// on guest storage.
func (s *Store) ActivateAccount(ctx context.Context) error {
	s.mu.Lock()
	if s.cart.Origin == domain.OriginAccount {
		s.mu.Unlock()
		return nil
	}
	s.cart.Origin = domain.OriginAccount
	guestLines := s.cart.Lines()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	for _, line := range guestLines {
		if err := s.remote.AddItem(ctx, line); err != nil {
			// Keep pushing the rest; the reconcile below decides the
			// final state either way.
			s.logger.Warn("merging guest line into account cart failed",
				zap.String("product_id", line.ProductID), zap.Error(err))
		}
	}

	if err := s.local.Save(ctx, nil); err != nil {
		s.logger.Warn("clearing guest cart storage failed", zap.Error(err))
	}

	return s.ReconcileWithRemote(ctx)
}

// ActivateGuest switches back to guest origin on sign-out. The in-memory
// account cart is discarded, never merged backward into guest storage.
func (s *Store) ActivateGuest(ctx context.Context) error {
	s.mu.Lock()
	alreadyGuest := s.cart.Origin == domain.OriginGuest
	s.mu.Unlock()
	if alreadyGuest {
		return nil
	}

	lines, err := s.local.Load(ctx)
	if err != nil {
		return fmt.Errorf("load guest cart: %w", err)
	}

	s.mu.Lock()
	s.cart = domain.NewCart(domain.OriginGuest)
	s.cart.Replace(lines)
	s.version++
	s.failures = 0
	s.synced = true
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// HandlePrincipal is the session subscription hook: identified principals
// activate the account cart, anonymous ones fall back to guest.
func (s *Store) HandlePrincipal(ctx context.Context, principal domain.Principal) {
	var err error
	if principal.Identified() {
		err = s.ActivateAccount(ctx)
	} else {
		err = s.ActivateGuest(ctx)
	}
	if err != nil {
		s.logger.Warn("cart origin switch failed",
			zap.String("kind", string(principal.Kind)), zap.Error(err))
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:      s.cart.Lines(),
		Subtotal:   s.cart.Subtotal(),
		ItemCount:  s.cart.ItemCount(),
		Origin:     s.cart.Origin,
		SyncFailed: !s.synced,
	}
}

func (s *Store) notify(snap Snapshot) {
	s.mu.Lock()
	subs := append([]func(Snapshot){}, s.subscribers...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}
