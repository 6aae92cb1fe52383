package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/ledger-backend/internal/adapter/grpc"
	"github.com/simaogato/ledger-backend/internal/config"
	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/usecase/dashboard"
	"github.com/simaogato/ledger-backend/internal/usecase/ledger"
	"github.com/simaogato/ledger-backend/internal/usecase/seeder"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC ledger server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}
			if cfg.ConfigPath != "" {
				log.Printf("Using config file %s", cfg.ConfigPath)
			}
			return serve(cmd.Context(), cfg, !skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply schema migrations on startup")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, applyMigrations bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Setup Storage
	store, err := openStorage(ctx, cfg.Storage, applyMigrations)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Failed to close storage: %v", err)
		}
	}()
	log.Printf("Using %s storage", cfg.Storage.Driver)

	// 2. Initialize Services (Use Cases)
	ledgerService := ledger.NewService(
		store.Accounts,
		store.Transactions,
		domain.SystemClock{},
		ledger.WithCommitter(store.Committer),
	)
	dashboardService := dashboard.NewDashboardService(store.Accounts, store.Transactions)

	// Seed configured accounts
	seeds, err := seedAccounts(cfg.Seed)
	if err != nil {
		return err
	}
	created, err := seeder.NewAccountSeeder(ledgerService, seeds).Seed(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}
	for _, account := range created {
		log.Printf("Seeded account %q (%s) with balance %s", account.Name, account.ID, account.Balance)
	}

	// Reconcile balances against history before accepting traffic
	summary, err := dashboardService.GetSummary(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconcile ledger: %w", err)
	}
	log.Printf("Ledger holds %d accounts and %d transactions, total balance %s",
		summary.AccountCount, summary.TransactionCount, summary.TotalBalance)
	for _, d := range summary.Discrepancies {
		log.Printf("WARNING: account %s balance %s does not match history total %s", d.AccountID, d.Balance, d.Expected)
	}

	// 3. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.RecoveryInterceptor(nil),
			grpcadapter.LoggingInterceptor(nil),
		),
	)

	limits := grpcadapter.Limits{
		MaxAmount:            cfg.Limits.MaxAmountValue(),
		MaxNameLength:        cfg.Limits.MaxNameLength,
		MaxDescriptionLength: cfg.Limits.MaxDescriptionLength,
	}
	grpcadapter.RegisterLedgerServiceServer(grpcServer, grpcadapter.NewServer(ledgerService, dashboardService, limits))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}

	// Start server in a goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("gRPC server listening on %s", lis.Addr())
		serveErr <- grpcServer.Serve(lis)
	}()

	// Graceful shutdown
	return waitForShutdown(grpcServer, healthServer, cfg.Server.ShutdownTimeout, serveErr)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server.
// In-flight calls get up to timeout to finish before the server is stopped hard.
func waitForShutdown(grpcServer *grpclib.Server, healthServer *health.Server, timeout time.Duration, serveErr <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	select {
	case err := <-serveErr:
		return fmt.Errorf("gRPC server stopped: %w", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v. Shutting down gracefully...", sig)
	}

	healthServer.Shutdown()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(timeout):
		log.Printf("Graceful shutdown timed out after %v, forcing stop", timeout)
		grpcServer.Stop()
	}

	log.Println("gRPC server stopped")
	return nil
}

func seedAccounts(cfg config.SeedConfig) ([]seeder.SeedAccount, error) {
	seeds := make([]seeder.SeedAccount, 0, len(cfg.Accounts))
	for _, account := range cfg.Accounts {
		balance := decimal.Zero
		if account.OpeningBalance != "" {
			var err error
			balance, err = decimal.NewFromString(account.OpeningBalance)
			if err != nil {
				return nil, fmt.Errorf("invalid opening balance for %q: %w", account.Name, err)
			}
		}
		seeds = append(seeds, seeder.SeedAccount{Name: account.Name, OpeningBalance: balance})
	}
	return seeds, nil
}
