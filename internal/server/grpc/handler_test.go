package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/api"
	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/logging"
	"github.com/dmitrijs2005/omnivault/internal/server/auth"
	"github.com/dmitrijs2005/omnivault/internal/server/lifecycle"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/server/services"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ---- fakes ----

type fakeUser struct {
	userSvc

	createResp *models.User
	createErr  error

	loginResp *services.TokenPair
	loginErr  error

	refreshResp *services.TokenPair
	refreshErr  error
}

func (f *fakeUser) CreateUser(ctx context.Context, username, wallet string) (*models.User, error) {
	return f.createResp, f.createErr
}
func (f *fakeUser) Login(ctx context.Context, wallet string) (*services.TokenPair, error) {
	return f.loginResp, f.loginErr
}
func (f *fakeUser) RefreshToken(ctx context.Context, refresh string) (*services.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}

type fakeVault struct {
	vaultSvc

	vault    *models.Vault
	vaultErr error

	steps []lifecycle.Step

	lastActor       string
	lastBeneficiary string
	valueCalls      int
}

func (f *fakeVault) GetClaimableValue(ctx context.Context, vaultID, beneficiary string) (decimal.Decimal, error) {
	f.valueCalls++
	f.lastBeneficiary = beneficiary
	return decimal.NewFromInt(20000), nil
}

func (f *fakeVault) GetVault(ctx context.Context, vaultID string) (*models.Vault, error) {
	return f.vault, f.vaultErr
}
func (f *fakeVault) RecordActivity(ctx context.Context, vaultID, actor string) error {
	f.lastActor = actor
	return f.vaultErr
}
func (f *fakeVault) ValidateVaultDraft(ctx context.Context, userID, vaultID string, c services.VaultContents) ([]lifecycle.Step, error) {
	return f.steps, f.vaultErr
}

type fakeClaim struct {
	claimSvc

	lastBeneficiary string
	result          *services.ClaimResult
	err             error
}

func (f *fakeClaim) ClaimVault(ctx context.Context, vaultID, beneficiary string) (*services.ClaimResult, error) {
	f.lastBeneficiary = beneficiary
	return f.result, f.err
}

// ---- helpers ----

func newServer(svc Services) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), svc, "k")
}

func authed(userID, wallet string) context.Context {
	return withIdentity(context.Background(), auth.Identity{UserID: userID, Wallet: wallet})
}

// ---- tests ----

func TestPing_OK(t *testing.T) {
	s := newServer(Services{})
	resp, err := s.Ping(context.Background(), &api.PingRequest{})
	if err != nil {
		t.Fatalf("Ping error: %v", err)
	}
	if resp.Status != "OK" {
		t.Fatalf("unexpected status: %q", resp.Status)
	}
}

func TestCreateUser_ReturnsSession(t *testing.T) {
	u := &fakeUser{
		createResp: &models.User{ID: "u1", WalletAddress: "w1", UserName: "alice", CreatedAt: time.Now()},
		loginResp:  &services.TokenPair{AccessToken: "A", RefreshToken: "R"},
	}
	s := newServer(Services{Users: u})
	resp, err := s.CreateUser(context.Background(), &api.CreateUserRequest{Username: "alice", WalletAddress: "w1"})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if resp.User.ID != "u1" || resp.User.Username != "alice" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
	if resp.AccessToken != "A" || resp.RefreshToken != "R" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}
}

func TestCreateUser_ConflictIsAlreadyExists(t *testing.T) {
	u := &fakeUser{createErr: common.NewError(common.KindConflict, "username taken")}
	s := newServer(Services{Users: u})
	_, err := s.CreateUser(context.Background(), &api.CreateUserRequest{Username: "alice", WalletAddress: "w2"})
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("want AlreadyExists, got %v", status.Code(err))
	}
}

func TestLogin_UnauthorizedAndInternal(t *testing.T) {
	s := newServer(Services{Users: &fakeUser{loginErr: common.ErrorUnauthorized}})
	_, err := s.Login(context.Background(), &api.LoginRequest{WalletAddress: "w"})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("want PermissionDenied, got %v", status.Code(err))
	}

	s2 := newServer(Services{Users: &fakeUser{loginErr: errors.New("boom")}})
	_, err = s2.Login(context.Background(), &api.LoginRequest{WalletAddress: "w"})
	if status.Code(err) != codes.Internal {
		t.Fatalf("want Internal, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "internal error" {
		t.Fatalf("internal detail leaked: %q", status.Convert(err).Message())
	}
}

func TestLogin_RequiresWallet(t *testing.T) {
	s := newServer(Services{Users: &fakeUser{}})
	_, err := s.Login(context.Background(), &api.LoginRequest{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", status.Code(err))
	}
}

func TestRefreshToken_Expired(t *testing.T) {
	s := newServer(Services{Users: &fakeUser{refreshErr: common.ErrRefreshTokenExpired}})
	_, err := s.RefreshToken(context.Background(), &api.RefreshTokenRequest{RefreshToken: "r0"})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("want Unauthenticated, got %v", status.Code(err))
	}
	if !errors.Is(api.FromStatus(err), common.ErrRefreshTokenExpired) {
		t.Fatalf("kind lost: %v", err)
	}
}

func TestHandlers_RequireIdentity(t *testing.T) {
	s := newServer(Services{Vaults: &fakeVault{}, Claims: &fakeClaim{}})
	_, err := s.ClaimVault(context.Background(), &api.VaultRequest{VaultID: "v1"})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("want Unauthenticated, got %v", status.Code(err))
	}
}

func TestClaimVault_UsesCallerWallet(t *testing.T) {
	now := time.Now()
	c := &fakeClaim{result: &services.ClaimResult{
		Claim: &models.Claim{
			ID: "c1", VaultID: "v1", Beneficiary: "alice", Status: models.ClaimCompleted,
			Payouts:     []models.Payout{{AssetID: "a1", TokenID: "t1", Symbol: "SOL", Amount: decimal.RequireFromString("60")}},
			Receipts:    []models.Receipt{{AssetID: "a1", TxHash: "h", Signature: "s"}},
			CompletedAt: &now,
		},
		ArchiveKey: "receipts/v1/c1.json",
	}}
	s := newServer(Services{Claims: c})

	resp, err := s.ClaimVault(authed("u-alice", "alice"), &api.VaultRequest{VaultID: "v1"})
	if err != nil {
		t.Fatalf("ClaimVault error: %v", err)
	}
	if c.lastBeneficiary != "alice" {
		t.Fatalf("beneficiary = %q, want caller wallet", c.lastBeneficiary)
	}
	if len(resp.Claim.Payouts) != 1 || resp.Claim.Payouts[0].Amount.String() != "60" {
		t.Fatalf("unexpected payouts: %+v", resp.Claim.Payouts)
	}
	if resp.ArchiveKey != "receipts/v1/c1.json" {
		t.Fatalf("unexpected archive key: %q", resp.ArchiveKey)
	}
}

func TestClaimVault_NotClaimableKeepsMetadata(t *testing.T) {
	c := &fakeClaim{err: common.NewError(common.KindNotClaimable, "vault not claimable yet", common.MetaDaysRemaining, "20")}
	s := newServer(Services{Claims: c})

	_, err := s.ClaimVault(authed("u", "alice"), &api.VaultRequest{VaultID: "v1"})
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("want FailedPrecondition, got %v", status.Code(err))
	}
	var e *common.Error
	if !errors.As(api.FromStatus(err), &e) || e.Metadata[common.MetaDaysRemaining] != "20" {
		t.Fatalf("metadata lost: %v", err)
	}
}

func TestGetVault_Visibility(t *testing.T) {
	v := &models.Vault{
		ID: "v1", UserID: "owner", Creator: "owner-wallet", Status: models.VaultActive,
		Beneficiaries: []models.Beneficiary{{Name: "Alice", Address: "alice"}},
	}
	s := newServer(Services{Vaults: &fakeVault{vault: v}})

	if _, err := s.GetVault(authed("owner", "owner-wallet"), &api.VaultRequest{VaultID: "v1"}); err != nil {
		t.Fatalf("owner: %v", err)
	}
	if _, err := s.GetVault(authed("u-alice", "alice"), &api.VaultRequest{VaultID: "v1"}); err != nil {
		t.Fatalf("beneficiary: %v", err)
	}
	_, err := s.GetVault(authed("mallory", "mallory"), &api.VaultRequest{VaultID: "v1"})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("want PermissionDenied, got %v", status.Code(err))
	}
}

func TestGetClaimableValue_Visibility(t *testing.T) {
	v := &models.Vault{
		ID: "v1", UserID: "owner", Creator: "owner-wallet", Status: models.VaultActive,
		Beneficiaries: []models.Beneficiary{{Name: "Alice", Address: "alice"}, {Name: "Bob", Address: "bob"}},
	}
	f := &fakeVault{vault: v}
	s := newServer(Services{Vaults: f})

	if _, err := s.GetClaimableValue(authed("owner", "owner-wallet"), &api.GetClaimableValueRequest{VaultID: "v1"}); err != nil {
		t.Fatalf("owner total: %v", err)
	}
	if f.lastBeneficiary != "" {
		t.Fatalf("owner total should not be scoped, got %q", f.lastBeneficiary)
	}
	if _, err := s.GetClaimableValue(authed("owner", "owner-wallet"), &api.GetClaimableValueRequest{VaultID: "v1", Beneficiary: "bob"}); err != nil {
		t.Fatalf("owner share: %v", err)
	}
	if f.lastBeneficiary != "bob" {
		t.Fatalf("owner share beneficiary = %q", f.lastBeneficiary)
	}

	if _, err := s.GetClaimableValue(authed("u-alice", "alice"), &api.GetClaimableValueRequest{VaultID: "v1"}); err != nil {
		t.Fatalf("beneficiary: %v", err)
	}
	if f.lastBeneficiary != "alice" {
		t.Fatalf("beneficiary value should be scoped to own wallet, got %q", f.lastBeneficiary)
	}

	calls := f.valueCalls
	_, err := s.GetClaimableValue(authed("u-alice", "alice"), &api.GetClaimableValueRequest{VaultID: "v1", Beneficiary: "bob"})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("beneficiary reading another share: want PermissionDenied, got %v", status.Code(err))
	}

	_, err = s.GetClaimableValue(authed("mallory", "mallory"), &api.GetClaimableValueRequest{VaultID: "v1"})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("non-member: want PermissionDenied, got %v", status.Code(err))
	}
	if f.valueCalls != calls {
		t.Fatalf("value computed for a rejected caller")
	}
}

func TestRecordActivity_ActorIsCallerWallet(t *testing.T) {
	f := &fakeVault{}
	s := newServer(Services{Vaults: f})
	if _, err := s.RecordActivity(authed("owner", "owner-wallet"), &api.VaultRequest{VaultID: "v1"}); err != nil {
		t.Fatalf("RecordActivity error: %v", err)
	}
	if f.lastActor != "owner-wallet" {
		t.Fatalf("actor = %q", f.lastActor)
	}

	_, err := s.RecordActivity(authed("owner", "owner-wallet"), &api.VaultRequest{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", status.Code(err))
	}
}

func TestValidateVaultDraft_Checklist(t *testing.T) {
	f := &fakeVault{steps: []lifecycle.Step{
		{Name: "basic info"},
		{Name: "beneficiaries", Err: common.Validation(lifecycle.MsgNoBeneficiaries)},
	}}
	s := newServer(Services{Vaults: f})

	resp, err := s.ValidateVaultDraft(authed("owner", "w"), &api.VaultContentsRequest{VaultID: "v1"})
	if err != nil {
		t.Fatalf("ValidateVaultDraft error: %v", err)
	}
	if resp.Valid {
		t.Fatal("draft with a failing step reported valid")
	}
	if len(resp.Steps) != 2 || !resp.Steps[0].Done || resp.Steps[1].Message != lifecycle.MsgNoBeneficiaries {
		t.Fatalf("unexpected steps: %+v", resp.Steps)
	}
}
