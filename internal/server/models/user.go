// Package models defines server-side data models persisted by the repositories.
package models

import "time"

// User is an account identified by a unique wallet address.
type User struct {
	ID            string
	WalletAddress string
	UserName      string
	CreatedAt     time.Time
}
