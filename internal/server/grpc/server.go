// Package grpc exposes the omnivault services as omnivault.v1.VaultService.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/omnivault/internal/api"
	"github.com/dmitrijs2005/omnivault/internal/logging"
	"github.com/dmitrijs2005/omnivault/internal/server/lifecycle"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/services"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type userSvc interface {
	CreateUser(ctx context.Context, username, wallet string) (*models.User, error)
	GetUserByWallet(ctx context.Context, wallet string) (*models.User, error)
	Login(ctx context.Context, wallet string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type tokenSvc interface {
	CreateToken(ctx context.Context, userID string, in services.NewToken) (*models.Token, error)
	UpdateTokenBalance(ctx context.Context, userID, tokenID string, balance decimal.Decimal) (*models.Token, error)
	ListTokens(ctx context.Context, userID string) ([]*models.Token, error)
	RegisterOFT(ctx context.Context, userID, tokenID string, chains []string) (*models.Token, error)
}

type vaultSvc interface {
	CreateVaultDraft(ctx context.Context, userID, title, description string, inactivityPeriod int) (*models.Vault, error)
	ValidateVaultDraft(ctx context.Context, userID, vaultID string, contents services.VaultContents) ([]lifecycle.Step, error)
	CommitVault(ctx context.Context, userID, vaultID string, contents services.VaultContents) (*models.Vault, error)
	RecordActivity(ctx context.Context, vaultID, actor string) error
	GetClaimableStatus(ctx context.Context, vaultID string) (lifecycle.ClaimStatus, error)
	GetVault(ctx context.Context, vaultID string) (*models.Vault, error)
	ListVaults(ctx context.Context, userID string) ([]*models.Vault, error)
	ListBeneficiaryVaults(ctx context.Context, address string) ([]*models.Vault, error)
	GetClaimableValue(ctx context.Context, vaultID, beneficiary string) (decimal.Decimal, error)
	ResetVault(ctx context.Context, vaultID, actor string) (*models.Vault, error)
}

type claimSvc interface {
	ClaimVault(ctx context.Context, vaultID, beneficiary string) (*services.ClaimResult, error)
	ReceiptURL(ctx context.Context, vaultID, beneficiary string) (string, error)
}

type transferSvc interface {
	CreateTransfer(ctx context.Context, userID string, in services.NewTransfer) (*models.Transfer, error)
	UpdateTransferStatus(ctx context.Context, userID, transferID string, status models.TransferStatus, txHash *string) (*models.Transfer, error)
	ListTransfers(ctx context.Context, userID string) ([]*models.Transfer, error)
}

type statsSvc interface {
	GetDashboardStats(ctx context.Context, userID string) (*models.DashboardStats, error)
}

// Services groups the business services served over gRPC.
type Services struct {
	Users     userSvc
	Tokens    tokenSvc
	Vaults    vaultSvc
	Claims    claimSvc
	Transfers transferSvc
	Stats     statsSvc
}

type GRPCServer struct {
	address   string
	users     userSvc
	tokens    tokenSvc
	vaults    vaultSvc
	claims    claimSvc
	transfers transferSvc
	stats     statsSvc
	logger    logging.Logger
	jwtSecret []byte
}

var _ api.VaultServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     svc.Users,
		tokens:    svc.Tokens,
		vaults:    svc.Vaults,
		claims:    svc.Claims,
		transfers: svc.Transfers,
		stats:     svc.Stats,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.recoverInterceptor, s.accessTokenInterceptor),
	)
	api.RegisterVaultServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
