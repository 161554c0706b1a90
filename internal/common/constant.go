// Package common contains shared constants and structured errors used across
// omnivault components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Metadata keys attached to structured errors.
const (
	MetaVaultID       = "vault_id"
	MetaAssetID       = "asset_id"
	MetaTokenID       = "token_id"
	MetaTransferID    = "transfer_id"
	MetaBeneficiary   = "beneficiary"
	MetaCurrentTotal  = "current_total"
	MetaDaysRemaining = "days_remaining"
	MetaStatus        = "status"
)
