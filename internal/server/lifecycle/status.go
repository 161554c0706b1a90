package lifecycle

import (
	"time"

	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/dmitrijs2005/omnivault/internal/timex"
)

// ClaimStatus is the derived claimability of a vault at a point in time.
type ClaimStatus struct {
	Claimable     bool
	DaysRemaining int
}

// Claimability computes whether a vault can be claimed at now.
//
// A triggered vault is claimable; an active one is once the whole days since
// lastActivity reach inactivityPeriod. Pending and claimed vaults never are.
func Claimability(status models.VaultStatus, lastActivity time.Time, inactivityPeriod int, now time.Time) ClaimStatus {
	switch status {
	case models.VaultTriggered:
		return ClaimStatus{Claimable: true}
	case models.VaultActive:
		days := timex.WholeDaysBetween(lastActivity, now)
		if days >= inactivityPeriod {
			return ClaimStatus{Claimable: true}
		}
		return ClaimStatus{DaysRemaining: inactivityPeriod - days}
	case models.VaultPending:
		return ClaimStatus{DaysRemaining: inactivityPeriod}
	default:
		return ClaimStatus{}
	}
}

// VaultClaimability is Claimability applied to v.
func VaultClaimability(v *models.Vault, now time.Time) ClaimStatus {
	return Claimability(v.Status, v.LastActivity, v.InactivityPeriod, now)
}

// EffectiveStatus is the stored status with the active → triggered
// transition applied at read time.
func EffectiveStatus(v *models.Vault, now time.Time) models.VaultStatus {
	if v.Status == models.VaultActive && VaultClaimability(v, now).Claimable {
		return models.VaultTriggered
	}
	return v.Status
}

var transitions = map[models.VaultStatus][]models.VaultStatus{
	models.VaultPending:   {models.VaultActive},
	models.VaultActive:    {models.VaultTriggered},
	models.VaultTriggered: {models.VaultClaimed},
}

// CanTransition reports whether from → to is a legal lifecycle step.
// The administrative triggered → active reset is checked by CanReset.
func CanTransition(from, to models.VaultStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanReset reports whether a vault in status may be reset to active.
// Resets are refused once any beneficiary has started a claim.
func CanReset(status models.VaultStatus, claims int) bool {
	return status == models.VaultTriggered && claims == 0
}

// Touch records owner activity. It returns false, leaving v untouched, when the
// vault is not active at now: triggered and claimed vaults are never revived.
func Touch(v *models.Vault, actor string, now time.Time) bool {
	if actor != v.Creator {
		return false
	}
	if EffectiveStatus(v, now) != models.VaultActive {
		return false
	}
	v.LastActivity = now
	return true
}
