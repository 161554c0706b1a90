package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "omnivault.v1.VaultService"

// FullMethod returns the gRPC method path for name, e.g. "/omnivault.v1.VaultService/Ping".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// VaultServiceServer is implemented by the server transport.
type VaultServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)

	CreateUser(context.Context, *CreateUserRequest) (*CreateUserResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	GetUserByWallet(context.Context, *GetUserByWalletRequest) (*GetUserByWalletResponse, error)

	CreateToken(context.Context, *CreateTokenRequest) (*TokenResponse, error)
	UpdateTokenBalance(context.Context, *UpdateTokenBalanceRequest) (*TokenResponse, error)
	ListTokens(context.Context, *ListTokensRequest) (*ListTokensResponse, error)
	RegisterOFT(context.Context, *RegisterOFTRequest) (*TokenResponse, error)

	CreateVaultDraft(context.Context, *CreateVaultDraftRequest) (*VaultResponse, error)
	ValidateVaultDraft(context.Context, *VaultContentsRequest) (*ValidateVaultDraftResponse, error)
	CommitVault(context.Context, *VaultContentsRequest) (*VaultResponse, error)
	RecordActivity(context.Context, *VaultRequest) (*Empty, error)
	GetClaimableStatus(context.Context, *VaultRequest) (*ClaimableStatusResponse, error)
	GetVault(context.Context, *VaultRequest) (*VaultResponse, error)
	ListVaults(context.Context, *ListVaultsRequest) (*ListVaultsResponse, error)
	ListBeneficiaryVaults(context.Context, *ListVaultsRequest) (*ListVaultsResponse, error)
	GetClaimableValue(context.Context, *GetClaimableValueRequest) (*ClaimableValueResponse, error)
	ResetVault(context.Context, *VaultRequest) (*VaultResponse, error)

	ClaimVault(context.Context, *VaultRequest) (*ClaimVaultResponse, error)
	GetReceiptURL(context.Context, *VaultRequest) (*ReceiptURLResponse, error)

	CreateTransfer(context.Context, *CreateTransferRequest) (*TransferResponse, error)
	UpdateTransferStatus(context.Context, *UpdateTransferStatusRequest) (*TransferResponse, error)
	ListTransfers(context.Context, *ListTransfersRequest) (*ListTransfersResponse, error)

	GetDashboardStats(context.Context, *DashboardStatsRequest) (*DashboardStatsResponse, error)
}

func unary[Req, Resp any](name string, call func(VaultServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VaultServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VaultServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes VaultService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", VaultServiceServer.Ping),
		unary("CreateUser", VaultServiceServer.CreateUser),
		unary("Login", VaultServiceServer.Login),
		unary("RefreshToken", VaultServiceServer.RefreshToken),
		unary("GetUserByWallet", VaultServiceServer.GetUserByWallet),
		unary("CreateToken", VaultServiceServer.CreateToken),
		unary("UpdateTokenBalance", VaultServiceServer.UpdateTokenBalance),
		unary("ListTokens", VaultServiceServer.ListTokens),
		unary("RegisterOFT", VaultServiceServer.RegisterOFT),
		unary("CreateVaultDraft", VaultServiceServer.CreateVaultDraft),
		unary("ValidateVaultDraft", VaultServiceServer.ValidateVaultDraft),
		unary("CommitVault", VaultServiceServer.CommitVault),
		unary("RecordActivity", VaultServiceServer.RecordActivity),
		unary("GetClaimableStatus", VaultServiceServer.GetClaimableStatus),
		unary("GetVault", VaultServiceServer.GetVault),
		unary("ListVaults", VaultServiceServer.ListVaults),
		unary("ListBeneficiaryVaults", VaultServiceServer.ListBeneficiaryVaults),
		unary("GetClaimableValue", VaultServiceServer.GetClaimableValue),
		unary("ResetVault", VaultServiceServer.ResetVault),
		unary("ClaimVault", VaultServiceServer.ClaimVault),
		unary("GetReceiptURL", VaultServiceServer.GetReceiptURL),
		unary("CreateTransfer", VaultServiceServer.CreateTransfer),
		unary("UpdateTransferStatus", VaultServiceServer.UpdateTransferStatus),
		unary("ListTransfers", VaultServiceServer.ListTransfers),
		unary("GetDashboardStats", VaultServiceServer.GetDashboardStats),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnivault/v1/vault.json",
}

func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
