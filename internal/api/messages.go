package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type User struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	Username      string    `json:"username"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateUserRequest struct {
	Username      string `json:"username"`
	WalletAddress string `json:"wallet_address"`
}

// CreateUserResponse also opens a session for the registered wallet.
type CreateUserResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LoginRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type GetUserByWalletRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type GetUserByWalletResponse struct {
	User User `json:"user"`
}

type Token struct {
	ID              string          `json:"id"`
	MintAddress     string          `json:"mint_address"`
	Name            string          `json:"name"`
	Symbol          string          `json:"symbol"`
	Decimals        int             `json:"decimals"`
	Balance         decimal.Decimal `json:"balance"`
	IsOFTEnabled    bool            `json:"is_oft_enabled"`
	LayerZeroID     string          `json:"layerzero_id,omitempty"`
	SupportedChains []string        `json:"supported_chains,omitempty"`
	TotalTransfers  int             `json:"total_transfers"`
	CreatedAt       time.Time       `json:"created_at"`
}

type CreateTokenRequest struct {
	MintAddress    string          `json:"mint_address"`
	Name           string          `json:"name"`
	Symbol         string          `json:"symbol"`
	Decimals       int             `json:"decimals"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type TokenResponse struct {
	Token Token `json:"token"`
}

type UpdateTokenBalanceRequest struct {
	TokenID string          `json:"token_id"`
	Balance decimal.Decimal `json:"balance"`
}

type ListTokensRequest struct{}

type ListTokensResponse struct {
	Tokens []Token `json:"tokens"`
}

type RegisterOFTRequest struct {
	TokenID string   `json:"token_id"`
	Chains  []string `json:"chains,omitempty"`
}

type Beneficiary struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type VaultAsset struct {
	ID          string                     `json:"id"`
	TokenID     string                     `json:"token_id"`
	Symbol      string                     `json:"symbol"`
	Amount      decimal.Decimal            `json:"amount"`
	UsdValue    decimal.Decimal            `json:"usd_value"`
	Allocations map[string]decimal.Decimal `json:"allocations"`
	AddedAt     time.Time                  `json:"added_at"`
}

type Vault struct {
	ID               string          `json:"id"`
	Creator          string          `json:"creator"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	Status           string          `json:"status"`
	InactivityPeriod int             `json:"inactivity_period"`
	CreatedAt        time.Time       `json:"created_at"`
	LastActivity     time.Time       `json:"last_activity"`
	TotalValue       decimal.Decimal `json:"total_value"`
	Beneficiaries    []Beneficiary   `json:"beneficiaries"`
	Assets           []VaultAsset    `json:"assets"`
}

type VaultResponse struct {
	Vault Vault `json:"vault"`
}

type CreateVaultDraftRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	InactivityPeriod int    `json:"inactivity_period"`
}

// AssetCommitment assigns an amount of a token to the vault, split between
// beneficiary addresses by percentage.
type AssetCommitment struct {
	ID          string                     `json:"id,omitempty"`
	TokenID     string                     `json:"token_id"`
	Amount      decimal.Decimal            `json:"amount"`
	Allocations map[string]decimal.Decimal `json:"allocations"`
}

type VaultContentsRequest struct {
	VaultID       string            `json:"vault_id"`
	Assets        []AssetCommitment `json:"assets"`
	Beneficiaries []Beneficiary     `json:"beneficiaries"`
}

type ChecklistStep struct {
	Name     string            `json:"name"`
	Done     bool              `json:"done"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type ValidateVaultDraftResponse struct {
	Steps []ChecklistStep `json:"steps"`
	Valid bool            `json:"valid"`
}

type VaultRequest struct {
	VaultID string `json:"vault_id"`
}

type Empty struct{}

type ClaimableStatusResponse struct {
	Claimable     bool `json:"claimable"`
	DaysRemaining int  `json:"days_remaining"`
}

type ListVaultsRequest struct{}

type ListVaultsResponse struct {
	Vaults []Vault `json:"vaults"`
}

type GetClaimableValueRequest struct {
	VaultID string `json:"vault_id"`
	// Beneficiary limits the value to that address's share when set.
	Beneficiary string `json:"beneficiary,omitempty"`
}

type ClaimableValueResponse struct {
	UsdValue decimal.Decimal `json:"usd_value"`
}

type Payout struct {
	AssetID string          `json:"asset_id"`
	TokenID string          `json:"token_id"`
	Symbol  string          `json:"symbol"`
	Amount  decimal.Decimal `json:"amount"`
}

type Receipt struct {
	AssetID   string `json:"asset_id"`
	TxHash    string `json:"tx_hash"`
	Signature string `json:"signature"`
}

type Claim struct {
	ID          string     `json:"id"`
	VaultID     string     `json:"vault_id"`
	Beneficiary string     `json:"beneficiary"`
	Status      string     `json:"status"`
	Payouts     []Payout   `json:"payouts"`
	Receipts    []Receipt  `json:"receipts"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type ClaimVaultResponse struct {
	Claim      Claim  `json:"claim"`
	ArchiveKey string `json:"archive_key,omitempty"`
}

type ReceiptURLResponse struct {
	URL string `json:"url"`
}

type Transfer struct {
	ID          string           `json:"id"`
	TokenID     string           `json:"token_id"`
	FromChain   string           `json:"from_chain"`
	ToChain     string           `json:"to_chain"`
	Amount      decimal.Decimal  `json:"amount"`
	Recipient   string           `json:"recipient"`
	Status      string           `json:"status"`
	TxHash      string           `json:"tx_hash,omitempty"`
	ProtocolFee *decimal.Decimal `json:"protocol_fee,omitempty"`
	GasFee      *decimal.Decimal `json:"gas_fee,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type CreateTransferRequest struct {
	TokenID   string          `json:"token_id"`
	FromChain string          `json:"from_chain"`
	ToChain   string          `json:"to_chain"`
	Amount    decimal.Decimal `json:"amount"`
	Recipient string          `json:"recipient"`
}

type TransferResponse struct {
	Transfer Transfer `json:"transfer"`
}

type UpdateTransferStatusRequest struct {
	TransferID string `json:"transfer_id"`
	Status     string `json:"status"`
	TxHash     string `json:"tx_hash,omitempty"`
}

type ListTransfersRequest struct{}

type ListTransfersResponse struct {
	Transfers []Transfer `json:"transfers"`
}

type DashboardStatsRequest struct{}

type DashboardStatsResponse struct {
	TotalBalance       decimal.Decimal `json:"total_balance"`
	ActiveVaults       int             `json:"active_vaults"`
	TotalVaults        int             `json:"total_vaults"`
	CompletedTransfers int             `json:"completed_transfers"`
	OFTEnabledTokens   int             `json:"oft_enabled_tokens"`
}
