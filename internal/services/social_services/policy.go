// File: internal/services/social_services/policy.go
package social_services

import (
	"fmt"

	"github.com/iyunix/go-linksports/internal/domain"
)

// TransitionPolicy decides whether actor may move c to the target status.
// Participation is checked before the policy is consulted.
type TransitionPolicy interface {
	Name() string
	Allow(c *domain.Connection, actor uint, to domain.ConnectionStatus) error
}

// OpenPolicy lets either participant set any status.
type OpenPolicy struct{}

func (OpenPolicy) Name() string { return "open" }

func (OpenPolicy) Allow(*domain.Connection, uint, domain.ConnectionStatus) error {
	return nil
}

// StrictPolicy lets only the addressee accept a request and only the
// blocking party lift a block.
type StrictPolicy struct{}

func (StrictPolicy) Name() string { return "strict" }

func (StrictPolicy) Allow(c *domain.Connection, actor uint, to domain.ConnectionStatus) error {
	if c.Status == domain.ConnectionBlocked && to != domain.ConnectionBlocked {
		if c.BlockedByID == nil || *c.BlockedByID != actor {
			return fmt.Errorf("only the blocking user can change a blocked connection: %w", domain.ErrForbidden)
		}
		return nil
	}
	if to == domain.ConnectionAccepted && c.Status != domain.ConnectionAccepted && actor != c.AddresseeID {
		return fmt.Errorf("only the addressee can accept a request: %w", domain.ErrForbidden)
	}
	return nil
}

// PolicyByName resolves the CONNECTION_POLICY setting.
func PolicyByName(name string) (TransitionPolicy, error) {
	switch name {
	case "", "open":
		return OpenPolicy{}, nil
	case "strict":
		return StrictPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown connection policy %q", name)
}
