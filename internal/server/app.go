// Package server wires the omnivault server: storage, chain collaborators,
// services and the gRPC transport, and runs them until a shutdown signal.
package server

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/logging"
	"github.com/dmitrijs2005/omnivault/internal/server/archive"
	"github.com/dmitrijs2005/omnivault/internal/server/chain"
	"github.com/dmitrijs2005/omnivault/internal/server/config"
	"github.com/dmitrijs2005/omnivault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/omnivault/internal/server/services"
	"github.com/dmitrijs2005/omnivault/internal/telemetry"

	gs "github.com/dmitrijs2005/omnivault/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	manager  repomanager.RepositoryManager
	services gs.Services
}

// NewApp opens storage, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	rm, err := repomanager.New(ctx, c.StorageDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	svc, err := buildServices(ctx, c, rm, logger)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}

	logger.Info(ctx, "storage ready", "driver", c.StorageDriver)
	return &App{config: c, logger: logger, manager: rm, services: svc}, nil
}

func buildServices(ctx context.Context, c *config.Config, rm repomanager.RepositoryManager, logger logging.Logger) (gs.Services, error) {
	oracle, err := chain.NewStaticOracle(c.Prices)
	if err != nil {
		return gs.Services{}, fmt.Errorf("price table: %w", err)
	}

	signer, err := newSigner(c.SignerSeed)
	if err != nil {
		return gs.Services{}, err
	}

	arch, err := newArchive(ctx, c)
	if err != nil {
		return gs.Services{}, fmt.Errorf("receipt archive: %w", err)
	}

	bridge := chain.NewSimulatedBridge()

	return gs.Services{
		Users:     services.NewUserService(rm, c),
		Tokens:    services.NewTokenService(rm, bridge, logger),
		Vaults:    services.NewVaultService(rm, oracle, logger),
		Claims:    services.NewClaimService(rm, signer, arch, logger),
		Transfers: services.NewTransferService(rm, bridge, logger),
		Stats:     services.NewStatsService(rm),
	}, nil
}

func newSigner(seedHex string) (*chain.SimulatedSigner, error) {
	var seed []byte
	if seedHex == "" {
		seed = common.GenerateRandByteArray(32)
		if seed == nil {
			return nil, errors.New("signer seed: system random source failed")
		}
	} else {
		var err error
		if seed, err = hex.DecodeString(seedHex); err != nil {
			return nil, fmt.Errorf("signer seed: %w", err)
		}
	}
	return chain.NewSimulatedSigner(seed)
}

// newArchive returns nil when no bucket is configured.
func newArchive(ctx context.Context, c *config.Config) (archive.Archive, error) {
	if c.S3Bucket == "" {
		return nil, nil
	}
	a, err := archive.NewS3Archive(ctx, archive.Options{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.services, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives,
// then releases storage and flushes traces.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	shutdownTracing, err := telemetry.Setup(ctx, app.config.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("tracing init error: %w", err)
	}

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "Shutting down...")
	return errors.Join(
		app.manager.Close(),
		shutdownTracing(context.Background()),
	)
}
