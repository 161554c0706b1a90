package grpc

import (
	"context"

	"github.com/dmitrijs2005/omnivault/internal/api"
	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/server/auth"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) caller(ctx context.Context) (auth.Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return auth.Identity{}, status.Error(codes.Unauthenticated, "missing token")
	}
	return id, nil
}

// fail logs err and converts it to a gRPC status.
func (s *GRPCServer) fail(ctx context.Context, op string, err error) error {
	if common.KindOf(err) == common.KindInternal {
		s.logger.Error(ctx, op+" failed", "error", err.Error())
	} else {
		s.logger.Debug(ctx, op+" rejected", "error", err.Error())
	}
	return api.ToStatus(err)
}

// required takes name/value pairs and reports the first empty value.
func required(kv ...string) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			return api.ToStatus(common.Validation(kv[i] + " is required"))
		}
	}
	return nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) CreateUser(ctx context.Context, req *api.CreateUserRequest) (*api.CreateUserResponse, error) {

	s.logger.Info(ctx, "Registration request")

	user, err := s.users.CreateUser(ctx, req.Username, req.WalletAddress)
	if err != nil {
		return nil, s.fail(ctx, "create user", err)
	}

	tokens, err := s.users.Login(ctx, user.WalletAddress)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &api.CreateUserResponse{User: toUser(user), AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	if err := required("wallet_address", req.WalletAddress); err != nil {
		return nil, err
	}

	tokens, err := s.users.Login(ctx, req.WalletAddress)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}

	return &api.LoginResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	if err := required("refresh_token", req.RefreshToken); err != nil {
		return nil, err
	}

	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.fail(ctx, "refresh token", err)
	}

	return &api.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) GetUserByWallet(ctx context.Context, req *api.GetUserByWalletRequest) (*api.GetUserByWalletResponse, error) {
	if err := required("wallet_address", req.WalletAddress); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByWallet(ctx, req.WalletAddress)
	if err != nil {
		return nil, s.fail(ctx, "get user", err)
	}
	return &api.GetUserByWalletResponse{User: toUser(user)}, nil
}

func (s *GRPCServer) CreateToken(ctx context.Context, req *api.CreateTokenRequest) (*api.TokenResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	t, err := s.tokens.CreateToken(ctx, id.UserID, services.NewToken{
		MintAddress:    req.MintAddress,
		Name:           req.Name,
		Symbol:         req.Symbol,
		Decimals:       req.Decimals,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		return nil, s.fail(ctx, "create token", err)
	}
	return &api.TokenResponse{Token: toToken(t)}, nil
}

func (s *GRPCServer) UpdateTokenBalance(ctx context.Context, req *api.UpdateTokenBalanceRequest) (*api.TokenResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("token_id", req.TokenID); err != nil {
		return nil, err
	}

	t, err := s.tokens.UpdateTokenBalance(ctx, id.UserID, req.TokenID, req.Balance)
	if err != nil {
		return nil, s.fail(ctx, "update balance", err)
	}
	return &api.TokenResponse{Token: toToken(t)}, nil
}

func (s *GRPCServer) ListTokens(ctx context.Context, req *api.ListTokensRequest) (*api.ListTokensResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	ts, err := s.tokens.ListTokens(ctx, id.UserID)
	if err != nil {
		return nil, s.fail(ctx, "list tokens", err)
	}
	return &api.ListTokensResponse{Tokens: toTokens(ts)}, nil
}

func (s *GRPCServer) RegisterOFT(ctx context.Context, req *api.RegisterOFTRequest) (*api.TokenResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("token_id", req.TokenID); err != nil {
		return nil, err
	}

	t, err := s.tokens.RegisterOFT(ctx, id.UserID, req.TokenID, req.Chains)
	if err != nil {
		return nil, s.fail(ctx, "register oft", err)
	}
	return &api.TokenResponse{Token: toToken(t)}, nil
}

func (s *GRPCServer) CreateVaultDraft(ctx context.Context, req *api.CreateVaultDraftRequest) (*api.VaultResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	v, err := s.vaults.CreateVaultDraft(ctx, id.UserID, req.Title, req.Description, req.InactivityPeriod)
	if err != nil {
		return nil, s.fail(ctx, "create vault", err)
	}
	return &api.VaultResponse{Vault: toVault(v)}, nil
}

func (s *GRPCServer) ValidateVaultDraft(ctx context.Context, req *api.VaultContentsRequest) (*api.ValidateVaultDraftResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("vault_id", req.VaultID); err != nil {
		return nil, err
	}

	steps, err := s.vaults.ValidateVaultDraft(ctx, id.UserID, req.VaultID, toContents(req))
	if err != nil {
		return nil, s.fail(ctx, "validate vault", err)
	}
	out, valid := toSteps(steps)
	return &api.ValidateVaultDraftResponse{Steps: out, Valid: valid}, nil
}

func (s *GRPCServer) CommitVault(ctx context.Context, req *api.VaultContentsRequest) (*api.VaultResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("vault_id", req.VaultID); err != nil {
		return nil, err
	}

	v, err := s.vaults.CommitVault(ctx, id.UserID, req.VaultID, toContents(req))
	if err != nil {
		return nil, s.fail(ctx, "commit vault", err)
	}
	return &api.VaultResponse{Vault: toVault(v)}, nil
}

func (s *GRPCServer) RecordActivity(ctx context.Context, req *api.VaultRequest) (*api.Empty, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("vault_id", req.VaultID); err != nil {
		return nil, err
	}

	if err := s.vaults.RecordActivity(ctx, req.VaultID, id.Wallet); err != nil {
		return nil, s.fail(ctx, "record activity", err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) GetClaimableStatus(ctx context.Context, req *api.VaultRequest) (*api.ClaimableStatusResponse, error) {
	if err := required("vault_id", req.VaultID); err != nil {
		return nil, err
	}

	st, err := s.vaults.GetClaimableStatus(ctx, req.VaultID)
	if err != nil {
		return nil, s.fail(ctx, "claimable status", err)
	}
	return &api.ClaimableStatusResponse{Claimable: st.Claimable, DaysRemaining: st.DaysRemaining}, nil
}

// GetVault is visible to the creator and to the vault's beneficiaries.
func (s *GRPCServer) GetVault(ctx context.Context, req *api.VaultRequest) (*api.VaultResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("vault_id", req.VaultID); err != nil {
		return nil, err
	}

	v, err := s.visibleVault(ctx, id, req.VaultID)
	if err != nil {
		return nil, s.fail(ctx, "get vault", err)
	}
	return &api.VaultResponse{Vault: toVault(v)}, nil
}

func (s *GRPCServer) visibleVault(ctx context.Context, id auth.Identity, vaultID string) (*models.Vault, error) {
	v, err := s.vaults.GetVault(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if v.UserID != id.UserID && !v.HasBeneficiary(id.Wallet) {
		return nil, common.NewError(common.KindAuthorization, "vault is not visible to caller", common.MetaVaultID, vaultID)
	}
	return v, nil
}

func (s *GRPCServer) ListVaults(ctx context.Context, req *api.ListVaultsRequest) (*api.ListVaultsResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	vs, err := s.vaults.ListVaults(ctx, id.UserID)
	if err != nil {
		return nil, s.fail(ctx, "list vaults", err)
	}
	return &api.ListVaultsResponse{Vaults: toVaults(vs)}, nil
}

func (s *GRPCServer) ListBeneficiaryVaults(ctx context.Context, req *api.ListVaultsRequest) (*api.ListVaultsResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	vs, err := s.vaults.ListBeneficiaryVaults(ctx, id.Wallet)
	if err != nil {
		return nil, s.fail(ctx, "list beneficiary vaults", err)
	}
	return &api.ListVaultsResponse{Vaults: toVaults(vs)}, nil
}

// GetClaimableValue follows GetVault visibility. A beneficiary only sees
// their own share.
func (s *GRPCServer) GetClaimableValue(ctx context.Context, req *api.GetClaimableValueRequest) (*api.ClaimableValueResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("vault_id", req.VaultID); err != nil {
		return nil, err
	}

	vault, err := s.visibleVault(ctx, id, req.VaultID)
	if err != nil {
		return nil, s.fail(ctx, "claimable value", err)
	}
	beneficiary := common.NormalizeAddress(req.Beneficiary)
	if vault.UserID != id.UserID {
		wallet := common.NormalizeAddress(id.Wallet)
		if beneficiary != "" && beneficiary != wallet {
			return nil, s.fail(ctx, "claimable value",
				common.NewError(common.KindAuthorization, "beneficiary may only read their own share",
					common.MetaVaultID, req.VaultID, common.MetaBeneficiary, beneficiary))
		}
		beneficiary = wallet
	}

	v, err := s.vaults.GetClaimableValue(ctx, req.VaultID, beneficiary)
	if err != nil {
		return nil, s.fail(ctx, "claimable value", err)
	}
	return &api.ClaimableValueResponse{UsdValue: v}, nil
}

func (s *GRPCServer) ResetVault(ctx context.Context, req *api.VaultRequest) (*api.VaultResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("vault_id", req.VaultID); err != nil {
		return nil, err
	}

	v, err := s.vaults.ResetVault(ctx, req.VaultID, id.Wallet)
	if err != nil {
		return nil, s.fail(ctx, "reset vault", err)
	}
	return &api.VaultResponse{Vault: toVault(v)}, nil
}

// ClaimVault claims the caller's share; the caller's wallet is the beneficiary.
func (s *GRPCServer) ClaimVault(ctx context.Context, req *api.VaultRequest) (*api.ClaimVaultResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("vault_id", req.VaultID); err != nil {
		return nil, err
	}

	res, err := s.claims.ClaimVault(ctx, req.VaultID, id.Wallet)
	if err != nil {
		return nil, s.fail(ctx, "claim vault", err)
	}
	return &api.ClaimVaultResponse{Claim: toClaim(res.Claim), ArchiveKey: res.ArchiveKey}, nil
}

func (s *GRPCServer) GetReceiptURL(ctx context.Context, req *api.VaultRequest) (*api.ReceiptURLResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("vault_id", req.VaultID); err != nil {
		return nil, err
	}

	url, err := s.claims.ReceiptURL(ctx, req.VaultID, id.Wallet)
	if err != nil {
		return nil, s.fail(ctx, "receipt url", err)
	}
	return &api.ReceiptURLResponse{URL: url}, nil
}

func (s *GRPCServer) CreateTransfer(ctx context.Context, req *api.CreateTransferRequest) (*api.TransferResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("token_id", req.TokenID, "from_chain", req.FromChain, "to_chain", req.ToChain); err != nil {
		return nil, err
	}

	t, err := s.transfers.CreateTransfer(ctx, id.UserID, services.NewTransfer{
		TokenID:   req.TokenID,
		FromChain: req.FromChain,
		ToChain:   req.ToChain,
		Amount:    req.Amount,
		Recipient: req.Recipient,
	})
	if err != nil {
		return nil, s.fail(ctx, "create transfer", err)
	}
	return &api.TransferResponse{Transfer: toTransfer(t)}, nil
}

func (s *GRPCServer) UpdateTransferStatus(ctx context.Context, req *api.UpdateTransferStatusRequest) (*api.TransferResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := required("transfer_id", req.TransferID, "status", req.Status); err != nil {
		return nil, err
	}

	var txHash *string
	if req.TxHash != "" {
		txHash = &req.TxHash
	}
	t, err := s.transfers.UpdateTransferStatus(ctx, id.UserID, req.TransferID, models.TransferStatus(req.Status), txHash)
	if err != nil {
		return nil, s.fail(ctx, "update transfer", err)
	}
	return &api.TransferResponse{Transfer: toTransfer(t)}, nil
}

func (s *GRPCServer) ListTransfers(ctx context.Context, req *api.ListTransfersRequest) (*api.ListTransfersResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	ts, err := s.transfers.ListTransfers(ctx, id.UserID)
	if err != nil {
		return nil, s.fail(ctx, "list transfers", err)
	}
	return &api.ListTransfersResponse{Transfers: toTransfers(ts)}, nil
}

func (s *GRPCServer) GetDashboardStats(ctx context.Context, req *api.DashboardStatsRequest) (*api.DashboardStatsResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	st, err := s.stats.GetDashboardStats(ctx, id.UserID)
	if err != nil {
		return nil, s.fail(ctx, "dashboard stats", err)
	}
	return &api.DashboardStatsResponse{
		TotalBalance:       st.TotalBalance,
		ActiveVaults:       st.ActiveVaults,
		TotalVaults:        st.TotalVaults,
		CompletedTransfers: st.CompletedTransfers,
		OFTEnabledTokens:   st.OFTEnabledTokens,
	}, nil
}
