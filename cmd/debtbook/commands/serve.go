package commands

import (
	"os"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mmynk/debtbook/internal/auth"
	"github.com/mmynk/debtbook/internal/ledger"
	"github.com/mmynk/debtbook/internal/metrics"
	"github.com/mmynk/debtbook/internal/middleware"
	"github.com/mmynk/debtbook/internal/server"
	"github.com/mmynk/debtbook/internal/service"
	"github.com/mmynk/debtbook/internal/validation"
)

var quiet bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the debtbook RPC server",
	Long: `Start the debtbook server. It serves the AuthService and LedgerService
connect procedures as JSON over HTTP/1.1 and h2c, Prometheus metrics on
/metrics and a health check on /healthz.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx, cfg)
		if err != nil {
			logger.Error("failed to initialize storage", "driver", cfg.DBDriver, "error", err)
			return err
		}
		defer store.Close()
		logger.Info("storage initialized", "driver", cfg.DBDriver)

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		v, err := validation.New()
		if err != nil {
			return err
		}
		jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

		ledgerSvc := ledger.New(store,
			ledger.WithLogger(logger),
			ledger.WithMetrics(m),
			ledger.WithDeletePolicy(cfg.DeletePolicy),
		)
		logger.Info("ledger ready", "delete_item_policy", ledgerSvc.Policy())

		ledgerPath, ledgerHandler := service.NewLedgerServiceHandler(
			service.NewLedgerService(ledgerSvc, v, logger),
			connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor(logger, m)),
		)
		authPath, authHandler := service.NewAuthServiceHandler(
			service.NewAuthService(auth.NewPasswordAuthenticator(store), store, jwtManager, v, logger),
			connect.WithInterceptors(middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor(logger, m)),
		)

		router, err := server.NewRouter(server.Options{
			Logger:     logger,
			Health:     store,
			Gatherer:   reg,
			StaticPath: cfg.StaticPath,
		},
			server.Mount{Path: ledgerPath, Handler: ledgerHandler},
			server.Mount{Path: authPath, Handler: authHandler},
		)
		if err != nil {
			logger.Error("failed to build router", "error", err)
			return err
		}

		if !quiet {
			figure.NewColorFigure("debtbook", "puffy", "green", true).Print()
		}

		if err := server.Run(ctx, cfg.Addr, router, logger); err != nil {
			logger.Error("server failed", "error", err)
			return err
		}
		logger.Info("server exited gracefully")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the startup banner")
	rootCmd.AddCommand(serveCmd)
}
