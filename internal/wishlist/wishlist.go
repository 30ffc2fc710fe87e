// Package wishlist keeps the saved-product set with the same optimistic
// protocol as the cart: mutate locally first, then sync. Identified
// sessions use the remote wishlist; anonymous ones stay on local files.
package wishlist

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Abhijith1905/csp-storefront/internal/domain"
)

// RemoteGateway is the remote wishlist resource.
type RemoteGateway interface {
	Get(ctx context.Context) ([]string, error)
	Add(ctx context.Context, productID string) error
	Remove(ctx context.Context, productID string) error
}

// LocalPersistence stores the anonymous wishlist. Saving an empty slice
// clears it.
type LocalPersistence interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

// Store holds the wishlist as a set of product ids.
type Store struct {
	mu       sync.Mutex
	ids      map[string]struct{}
	remote   bool
	gateway  RemoteGateway
	local    LocalPersistence
	logger   *zap.Logger
	inflight sync.WaitGroup
}

func NewStore(gateway RemoteGateway, local LocalPersistence, logger *zap.Logger) *Store {
	return &Store{
		ids:     make(map[string]struct{}),
		gateway: gateway,
		local:   local,
		logger:  logger,
	}
}

// HandlePrincipal switches between the remote and local wishlist as the
// session changes. Identified loads the remote list; anonymous reloads
// the local file and drops whatever the account session held.
func (s *Store) HandlePrincipal(ctx context.Context, principal domain.Principal) {
	if principal.Identified() {
		s.activateRemote(ctx)
		return
	}
	s.activateLocal(ctx)
}

func (s *Store) activateRemote(ctx context.Context) {
	ids, err := s.gateway.Get(ctx)
	if err != nil {
		s.logger.Warn("wishlist load failed, starting empty", zap.Error(err))
		ids = nil
	}
	s.mu.Lock()
	s.remote = true
	s.ids = toSet(ids)
	s.mu.Unlock()
}

func (s *Store) activateLocal(ctx context.Context) {
	ids, err := s.local.Load(ctx)
	if err != nil {
		s.logger.Warn("local wishlist load failed, starting empty", zap.Error(err))
		ids = nil
	}
	s.mu.Lock()
	s.remote = false
	s.ids = toSet(ids)
	s.mu.Unlock()
}

// Contains reports whether the product is saved.
func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[productID]
	return ok
}

// List returns the saved product ids in stable order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Toggle flips membership for the product and reports the new state. The
// in-memory set changes immediately; the sync happens behind it.
func (s *Store) Toggle(ctx context.Context, productID string) bool {
	s.mu.Lock()
	_, present := s.ids[productID]
	if present {
		delete(s.ids, productID)
	} else {
		s.ids[productID] = struct{}{}
	}
	remote := s.remote
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	added := !present
	if !remote {
		if err := s.local.Save(ctx, snapshot); err != nil {
			s.logger.Warn("local wishlist save failed", zap.Error(err))
		}
		return added
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		var err error
		if added {
			err = s.gateway.Add(context.WithoutCancel(ctx), productID)
		} else {
			err = s.gateway.Remove(context.WithoutCancel(ctx), productID)
		}
		if err != nil {
			s.logger.Warn("wishlist sync failed, reloading from server",
				zap.String("product_id", productID), zap.Error(err))
			s.Sync(context.WithoutCancel(ctx))
		}
	}()
	return added
}

// Sync replaces the in-memory set with the server's copy. No-op for the
// local wishlist.
func (s *Store) Sync(ctx context.Context) {
	s.mu.Lock()
	remote := s.remote
	s.mu.Unlock()
	if !remote {
		return
	}

	ids, err := s.gateway.Get(ctx)
	if err != nil {
		s.logger.Warn("wishlist sync fetch failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	if s.remote {
		s.ids = toSet(ids)
	}
	s.mu.Unlock()
}

// Wait blocks until queued syncs finish. Test hook.
func (s *Store) Wait() {
	s.inflight.Wait()
}

func (s *Store) snapshotLocked() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
