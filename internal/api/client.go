package api

import (
	"context"

	"google.golang.org/grpc"
)

// VaultServiceClient is the client side of VaultService.
type VaultServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)

	CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*CreateUserResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	GetUserByWallet(ctx context.Context, in *GetUserByWalletRequest, opts ...grpc.CallOption) (*GetUserByWalletResponse, error)

	CreateToken(ctx context.Context, in *CreateTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	UpdateTokenBalance(ctx context.Context, in *UpdateTokenBalanceRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	ListTokens(ctx context.Context, in *ListTokensRequest, opts ...grpc.CallOption) (*ListTokensResponse, error)
	RegisterOFT(ctx context.Context, in *RegisterOFTRequest, opts ...grpc.CallOption) (*TokenResponse, error)

	CreateVaultDraft(ctx context.Context, in *CreateVaultDraftRequest, opts ...grpc.CallOption) (*VaultResponse, error)
	ValidateVaultDraft(ctx context.Context, in *VaultContentsRequest, opts ...grpc.CallOption) (*ValidateVaultDraftResponse, error)
	CommitVault(ctx context.Context, in *VaultContentsRequest, opts ...grpc.CallOption) (*VaultResponse, error)
	RecordActivity(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*Empty, error)
	GetClaimableStatus(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*ClaimableStatusResponse, error)
	GetVault(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*VaultResponse, error)
	ListVaults(ctx context.Context, in *ListVaultsRequest, opts ...grpc.CallOption) (*ListVaultsResponse, error)
	ListBeneficiaryVaults(ctx context.Context, in *ListVaultsRequest, opts ...grpc.CallOption) (*ListVaultsResponse, error)
	GetClaimableValue(ctx context.Context, in *GetClaimableValueRequest, opts ...grpc.CallOption) (*ClaimableValueResponse, error)
	ResetVault(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*VaultResponse, error)

	ClaimVault(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*ClaimVaultResponse, error)
	GetReceiptURL(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*ReceiptURLResponse, error)

	CreateTransfer(ctx context.Context, in *CreateTransferRequest, opts ...grpc.CallOption) (*TransferResponse, error)
	UpdateTransferStatus(ctx context.Context, in *UpdateTransferStatusRequest, opts ...grpc.CallOption) (*TransferResponse, error)
	ListTransfers(ctx context.Context, in *ListTransfersRequest, opts ...grpc.CallOption) (*ListTransfersResponse, error)

	GetDashboardStats(ctx context.Context, in *DashboardStatsRequest, opts ...grpc.CallOption) (*DashboardStatsResponse, error)
}

type vaultServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewVaultServiceClient returns a client that always calls with the JSON codec.
func NewVaultServiceClient(cc grpc.ClientConnInterface) VaultServiceClient {
	return &vaultServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}

func (c *vaultServiceClient) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*CreateUserResponse, error) {
	return invoke[CreateUserResponse](ctx, c.cc, "CreateUser", in, opts)
}

func (c *vaultServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, "Login", in, opts)
}

func (c *vaultServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, "RefreshToken", in, opts)
}

func (c *vaultServiceClient) GetUserByWallet(ctx context.Context, in *GetUserByWalletRequest, opts ...grpc.CallOption) (*GetUserByWalletResponse, error) {
	return invoke[GetUserByWalletResponse](ctx, c.cc, "GetUserByWallet", in, opts)
}

func (c *vaultServiceClient) CreateToken(ctx context.Context, in *CreateTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, "CreateToken", in, opts)
}

func (c *vaultServiceClient) UpdateTokenBalance(ctx context.Context, in *UpdateTokenBalanceRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, "UpdateTokenBalance", in, opts)
}

func (c *vaultServiceClient) ListTokens(ctx context.Context, in *ListTokensRequest, opts ...grpc.CallOption) (*ListTokensResponse, error) {
	return invoke[ListTokensResponse](ctx, c.cc, "ListTokens", in, opts)
}

func (c *vaultServiceClient) RegisterOFT(ctx context.Context, in *RegisterOFTRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, "RegisterOFT", in, opts)
}

func (c *vaultServiceClient) CreateVaultDraft(ctx context.Context, in *CreateVaultDraftRequest, opts ...grpc.CallOption) (*VaultResponse, error) {
	return invoke[VaultResponse](ctx, c.cc, "CreateVaultDraft", in, opts)
}

func (c *vaultServiceClient) ValidateVaultDraft(ctx context.Context, in *VaultContentsRequest, opts ...grpc.CallOption) (*ValidateVaultDraftResponse, error) {
	return invoke[ValidateVaultDraftResponse](ctx, c.cc, "ValidateVaultDraft", in, opts)
}

func (c *vaultServiceClient) CommitVault(ctx context.Context, in *VaultContentsRequest, opts ...grpc.CallOption) (*VaultResponse, error) {
	return invoke[VaultResponse](ctx, c.cc, "CommitVault", in, opts)
}

func (c *vaultServiceClient) RecordActivity(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "RecordActivity", in, opts)
}

func (c *vaultServiceClient) GetClaimableStatus(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*ClaimableStatusResponse, error) {
	return invoke[ClaimableStatusResponse](ctx, c.cc, "GetClaimableStatus", in, opts)
}

func (c *vaultServiceClient) GetVault(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*VaultResponse, error) {
	return invoke[VaultResponse](ctx, c.cc, "GetVault", in, opts)
}

func (c *vaultServiceClient) ListVaults(ctx context.Context, in *ListVaultsRequest, opts ...grpc.CallOption) (*ListVaultsResponse, error) {
	return invoke[ListVaultsResponse](ctx, c.cc, "ListVaults", in, opts)
}

func (c *vaultServiceClient) ListBeneficiaryVaults(ctx context.Context, in *ListVaultsRequest, opts ...grpc.CallOption) (*ListVaultsResponse, error) {
	return invoke[ListVaultsResponse](ctx, c.cc, "ListBeneficiaryVaults", in, opts)
}

func (c *vaultServiceClient) GetClaimableValue(ctx context.Context, in *GetClaimableValueRequest, opts ...grpc.CallOption) (*ClaimableValueResponse, error) {
	return invoke[ClaimableValueResponse](ctx, c.cc, "GetClaimableValue", in, opts)
}

func (c *vaultServiceClient) ResetVault(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*VaultResponse, error) {
	return invoke[VaultResponse](ctx, c.cc, "ResetVault", in, opts)
}

func (c *vaultServiceClient) ClaimVault(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*ClaimVaultResponse, error) {
	return invoke[ClaimVaultResponse](ctx, c.cc, "ClaimVault", in, opts)
}

func (c *vaultServiceClient) GetReceiptURL(ctx context.Context, in *VaultRequest, opts ...grpc.CallOption) (*ReceiptURLResponse, error) {
	return invoke[ReceiptURLResponse](ctx, c.cc, "GetReceiptURL", in, opts)
}

func (c *vaultServiceClient) CreateTransfer(ctx context.Context, in *CreateTransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	return invoke[TransferResponse](ctx, c.cc, "CreateTransfer", in, opts)
}

func (c *vaultServiceClient) UpdateTransferStatus(ctx context.Context, in *UpdateTransferStatusRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	return invoke[TransferResponse](ctx, c.cc, "UpdateTransferStatus", in, opts)
}

func (c *vaultServiceClient) ListTransfers(ctx context.Context, in *ListTransfersRequest, opts ...grpc.CallOption) (*ListTransfersResponse, error) {
	return invoke[ListTransfersResponse](ctx, c.cc, "ListTransfers", in, opts)
}

func (c *vaultServiceClient) GetDashboardStats(ctx context.Context, in *DashboardStatsRequest, opts ...grpc.CallOption) (*DashboardStatsResponse, error) {
	return invoke[DashboardStatsResponse](ctx, c.cc, "GetDashboardStats", in, opts)
}
