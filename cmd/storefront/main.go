package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Abhijith1905/csp-storefront/internal/auth"
	"github.com/Abhijith1905/csp-storefront/internal/cart"
	"github.com/Abhijith1905/csp-storefront/internal/catalog"
	"github.com/Abhijith1905/csp-storefront/internal/checkout"
	"github.com/Abhijith1905/csp-storefront/internal/config"
	"github.com/Abhijith1905/csp-storefront/internal/domain"
	"github.com/Abhijith1905/csp-storefront/internal/facade"
	"github.com/Abhijith1905/csp-storefront/internal/gateway"
	"github.com/Abhijith1905/csp-storefront/internal/storage"
	"github.com/Abhijith1905/csp-storefront/internal/wishlist"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("CSP_CONFIG"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	// Local persistence
	fs := afero.NewOsFs()
	tokenFiles := storage.NewTokens(fs, cfg.DataDir)
	guestCart := storage.NewGuestCart(fs, cfg.DataDir)
	history := storage.NewOrderHistory(fs, cfg.DataDir)
	wishlistFiles := storage.NewWishlist(fs, cfg.DataDir)

	// Remote gateways
	tokens := auth.NewTokenStore(tokenFiles)
	identityClient := gateway.NewClient(cfg.IdentityBaseURL, cfg.RequestTimeout, nil, logger)
	apiClient := gateway.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, tokens, logger)
	identity := gateway.NewIdentityGateway(identityClient)
	cartGateway := gateway.NewCartGateway(apiClient)
	orderGateway := gateway.NewOrderGateway(apiClient)
	productGateway := gateway.NewProductGateway(apiClient)
	wishlistGateway := gateway.NewWishlistGateway(apiClient)

	// Stores and services
	session := auth.NewSession(tokens, identity, logger)
	session.SetRefreshMargin(cfg.RefreshMargin)
	cartStore := cart.NewStore(cartGateway, guestCart, logger)
	wishlistStore := wishlist.NewStore(wishlistGateway, wishlistFiles, logger)
	catalogService := catalog.NewService(productGateway, session.Principal)
	orchestrator := checkout.NewOrchestrator(cartStore, orderGateway, history, logger)
	poller := checkout.NewPoller(history, orderGateway, logger, cfg.PendingOrderInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cart and wishlist follow the session between guest and account.
	session.Subscribe(func(principal domain.Principal) {
		cartStore.HandlePrincipal(ctx, principal)
		wishlistStore.HandlePrincipal(ctx, principal)
	})

	if err := cartStore.LoadGuest(ctx); err != nil {
		logger.Warn("guest cart load failed, starting empty", zap.Error(err))
	}
	wishlistStore.HandlePrincipal(ctx, session.Principal())

	principal := session.Restore(ctx)
	logger.Info("session restored",
		zap.String("kind", string(principal.Kind)),
		zap.String("role", string(principal.Role)))

	go poller.Run(ctx)
	go refreshLoop(ctx, session, logger)

	handler := facade.Router(
		facade.NewAuthHandler(session, logger),
		facade.NewCartHandler(cartStore, catalogService, logger),
		facade.NewWishlistHandler(wishlistStore, logger),
		facade.NewProductHandler(catalogService, logger),
		facade.NewCheckoutHandler(orchestrator, session, logger),
		logger,
		cfg.RequestTimeout,
	)
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("local API listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown failed", zap.Error(err))
	}

	// Let queued cart and wishlist submissions land before exit.
	cartStore.Wait()
	wishlistStore.Wait()
}

// refreshLoop keeps the session fresh so API calls never carry a token
// that is about to expire.
func refreshLoop(ctx context.Context, session *auth.Session, logger *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := session.RefreshIfNeeded(ctx); err != nil {
				logger.Warn("session refresh failed", zap.Error(err))
			}
		}
	}
}
