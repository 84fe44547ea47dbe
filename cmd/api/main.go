package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "vetlab/api/swagger" // swagger docs
	"vetlab/internal/auth"
	"vetlab/internal/config"
	"vetlab/internal/handler"
	"vetlab/internal/hostapi"
	"vetlab/internal/metrics"
	"vetlab/internal/middleware"
	"vetlab/internal/model"
	"vetlab/internal/repository"
	"vetlab/internal/search"
	"vetlab/internal/service"
	"vetlab/internal/storage"
	"vetlab/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
)

// @title           Vet Lab & Quarantine API
// @version         1.0
// @description     Laboratory procedures, inventory and veterinary quarantine records.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("storage ready", "driver", cfg.Storage.Driver)

	// Set up dependencies (Storage -> Repository -> Facade -> Service -> Handler)
	repoOpts := []repository.Option{repository.WithLogger(logger)}
	labLocal := repository.NewLabRepository(port, repoOpts...)
	vetLocal := repository.NewVetRepository(port, repoOpts...)
	repository.LinkUsers(labLocal, vetLocal)

	labDelegates := hostDelegates(ctx, cfg, model.DomainLab, logger)
	vetDelegates := hostDelegates(ctx, cfg, model.DomainVet, logger)
	lab := service.NewLabFacade(labLocal, logger, labDelegates...)
	vet := service.NewVetFacade(vetLocal, logger, vetDelegates...)

	table := auth.Default()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	gate := middleware.NewAuth(tokens, table, cfg.Release())

	labUsers := service.NewUserService(model.DomainLab, lab, cfg.CacheTTL, time.Now)
	vetUsers := service.NewUserService(model.DomainVet, vet, cfg.CacheTTL, time.Now)

	var searchSvc *service.SearchService
	hub := websocket.NewHub(logger, func(ctx context.Context, user model.SessionUser, query string) ([]search.Group, error) {
		return searchSvc.Search(ctx, user, query)
	})

	inventory := service.NewInventoryService(lab, hub, cfg.CacheTTL, time.Now)
	searchSvc = service.NewSearchService(lab, vet, inventory, labUsers, vetUsers, table)
	monitor := service.NewAlertMonitor(lab, hub, service.AlertConfig{
		Interval:   cfg.AlertInterval,
		ExpiryDays: cfg.AlertExpiryDays,
		LowStock:   decimal.NewFromInt(int64(cfg.AlertLowStock)),
	}, time.Now, logger)
	authSvc := service.NewAuthService(auth.NewDirectory(labUsers, vetUsers, logger), table, tokens)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authSvc, gate)
	labHandler := handler.NewLabHandler(lab, service.NewLabService(lab), gate)
	inventoryHandler := handler.NewInventoryHandler(inventory, monitor, gate)
	vetHandler := handler.NewVetHandler(vet, service.NewVetService(vet), gate)
	peopleHandler := handler.NewPeopleHandler(labUsers, vetUsers,
		service.NewNotificationService(model.DomainLab, lab, hub),
		service.NewNotificationService(model.DomainVet, vet, hub), gate)
	searchHandler := handler.NewSearchHandler(searchSvc, gate)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig), metrics.Middleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", metrics.Handler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(hub, c, tokens)
	})

	authHandler.RegisterRoutes(router.Group(""))
	labHandler.RegisterRoutes(router.Group(""))
	inventoryHandler.RegisterRoutes(router.Group(""))
	vetHandler.RegisterRoutes(router.Group(""))
	peopleHandler.RegisterRoutes(router.Group(""))
	searchHandler.RegisterRoutes(router.Group(""))

	if err := labLocal.Reload(ctx); err != nil {
		return err
	}
	if err := vetLocal.Reload(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return monitor.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// hostDelegates builds the host API client for one domain, if configured.
func hostDelegates(ctx context.Context, cfg *config.Config, d model.Domain, logger *slog.Logger) []repository.Provider {
	if cfg.HostAPIURL == "" {
		return nil
	}
	host := hostapi.New(cfg.HostAPIURL,
		hostapi.WithDomain(d),
		hostapi.WithTimeout(cfg.HostAPITimeout),
		hostapi.WithLogger(logger),
	)
	if err := host.Discover(ctx); err != nil {
		logger.Warn("host API discovery failed, every operation will be tried", "host", host.Name(), "error", err)
	}
	return []repository.Provider{host}
}
