// File: internal/services/profile_services/profile_service.go
package profile_services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository/profile"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// SportChecker reports whether a user has added any sport.
type SportChecker interface {
	HasAnySport(ctx context.Context, userID uint) (bool, error)
}

type ProfileService struct {
	profileRepo profile.ProfileRepository
	sports      SportChecker
	logger      Logger
	now         func() time.Time
}

func NewProfileService(profileRepo profile.ProfileRepository, sports SportChecker, logger Logger) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		sports:      sports,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *ProfileService) Get(ctx context.Context, id uint) (*domain.Profile, error) {
	return s.profileRepo.FindByID(ctx, id)
}

func (s *ProfileService) GetForUser(ctx context.Context, userID uint) (*domain.Profile, error) {
	return s.profileRepo.FindByUserID(ctx, userID)
}

// Update applies the variant's whitelisted fields. Only the owner may edit.
func (s *ProfileService) Update(ctx context.Context, actorID, profileID uint, fields map[string]json.RawMessage) (*domain.Profile, error) {
	p, err := s.editable(ctx, actorID, profileID)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(fields, s.now()); err != nil {
		return nil, err
	}
	if err := s.profileRepo.Update(ctx, p); err != nil {
		s.logger.Error("profile update failed", "error", err, "profile_id", p.ID)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.logger.Info("profile updated", "profile_id", p.ID, "user_id", p.UserID, "fields", len(fields))
	return p, nil
}

// CompleteSetup applies fields and marks the owner's profile completed.
// Calling it again leaves the flag set.
func (s *ProfileService) CompleteSetup(ctx context.Context, actorID, profileID uint, fields map[string]json.RawMessage) (*domain.Profile, error) {
	p, err := s.editable(ctx, actorID, profileID)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(fields, s.now()); err != nil {
		return nil, err
	}
	if err := s.profileRepo.CompleteSetup(ctx, p); err != nil {
		s.logger.Error("profile setup completion failed", "error", err, "profile_id", p.ID)
		return nil, fmt.Errorf("failed to complete profile setup: %w", err)
	}
	s.logger.Info("profile setup completed", "profile_id", p.ID, "user_id", p.UserID)
	return p, nil
}

// CompletionPercentage evaluates the profile's completeness on demand.
func (s *ProfileService) CompletionPercentage(ctx context.Context, p *domain.Profile) (int, error) {
	hasSport, err := s.sports.HasAnySport(ctx, p.UserID)
	if err != nil {
		return 0, err
	}
	return p.CompletionPercentage(hasSport), nil
}

func (s *ProfileService) editable(ctx context.Context, actorID, profileID uint) (*domain.Profile, error) {
	p, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.UserID != actorID {
		s.logger.Warn("profile edit by non-owner", "profile_id", profileID, "actor_id", actorID)
		return nil, domain.ErrForbidden
	}
	return p, nil
}
