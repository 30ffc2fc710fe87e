package checkout

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Poller retries pending-local orders in the background until the order
// API accepts them. It polls the local history the way an outbox is
// polled: on a ticker, marking each entry done only after the remote call
// succeeded, so an order is submitted at least once and recorded as
// submitted at most once.
type Poller struct {
	history  History
	gateway  OrderGateway
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration
	maxTries uint
}

func NewPoller(history History, gateway OrderGateway, logger *zap.Logger, interval time.Duration) *Poller {
	return &Poller{
		history:  history,
		gateway:  gateway,
		logger:   logger,
		interval: interval,
		timeout:  30 * time.Second,
		maxTries: 3,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.flushPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) flushPending(ctx context.Context) {
	pending, err := p.history.Pending(ctx)
	if err != nil {
		p.logger.Warn("fetching pending orders failed", zap.Error(err))
		return
	}

	for _, order := range pending {
		order := order
		fctx, cancel := context.WithTimeout(ctx, p.timeout)
		remoteID, err := backoff.Retry(fctx, func() (string, error) {
			return p.gateway.Submit(fctx, order)
		}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(p.maxTries))
		cancel()
		if err != nil {
			p.logger.Info("pending order still unconfirmed",
				zap.String("order_id", order.ID), zap.Error(err))
			continue
		}

		if err := p.history.MarkSubmitted(ctx, order.ID, remoteID); err != nil {
			p.logger.Warn("marking order submitted failed",
				zap.String("order_id", order.ID), zap.Error(err))
			continue
		}
		p.logger.Info("pending order confirmed",
			zap.String("order_id", order.ID), zap.String("remote_id", remoteID))
	}
}
