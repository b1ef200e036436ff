// File: internal/domain/connection.go
package domain

import "time"

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionBlocked  ConnectionStatus = "blocked"
)

func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionPending, ConnectionAccepted, ConnectionBlocked:
		return true
	}
	return false
}

// Connection links two users. At most one row exists per unordered pair:
// the ordered pair is unique and lookups check both directions.
type Connection struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RequesterID uint             `json:"requester_id" gorm:"not null;uniqueIndex:idx_connection_pair,priority:1"`
	AddresseeID uint             `json:"addressee_id" gorm:"not null;uniqueIndex:idx_connection_pair,priority:2;index"`
	Status      ConnectionStatus `json:"status" gorm:"size:20;not null;default:pending;index"`
	BlockedByID *uint            `json:"blocked_by_id,omitempty"`
	ConnectedAt *time.Time       `json:"connected_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	Requester *User `json:"requester,omitempty" gorm:"foreignKey:RequesterID;constraint:OnDelete:CASCADE"`
	Addressee *User `json:"addressee,omitempty" gorm:"foreignKey:AddresseeID;constraint:OnDelete:CASCADE"`
}

// Involves reports whether userID is the requester or the addressee.
func (c *Connection) Involves(userID uint) bool {
	return c.RequesterID == userID || c.AddresseeID == userID
}

// OtherParty returns the participant that is not userID.
func (c *Connection) OtherParty(userID uint) uint {
	if c.RequesterID == userID {
		return c.AddresseeID
	}
	return c.RequesterID
}

// Transition sets the status on behalf of actor. Accepting stamps
// ConnectedAt; blocking records who blocked.
func (c *Connection) Transition(status ConnectionStatus, actor uint, now time.Time) {
	c.Status = status
	switch status {
	case ConnectionAccepted:
		c.ConnectedAt = &now
		c.BlockedByID = nil
	case ConnectionBlocked:
		c.BlockedByID = &actor
	default:
		c.BlockedByID = nil
	}
}
