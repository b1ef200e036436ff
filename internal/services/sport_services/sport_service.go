// File: internal/services/sport_services/sport_service.go
package sport_services

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository/sport"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// UserSportInput carries a create or partial update of a user sport.
// Nil fields are left unchanged on update.
type UserSportInput struct {
	SportID         uint           `json:"sport_id"`
	Position        *string        `json:"position"`
	YearsExperience *int           `json:"years_experience"`
	Primary         *bool          `json:"primary"`
	Details         map[string]any `json:"details"`
}

type SportService struct {
	repo   sport.SportRepository
	logger Logger
}

func NewSportService(repo sport.SportRepository, logger Logger) *SportService {
	return &SportService{repo: repo, logger: logger}
}

func (s *SportService) ListSports(ctx context.Context, category, q string) ([]domain.Sport, error) {
	return s.repo.ListActive(ctx, category, q)
}

func (s *SportService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// GetSport returns the sport with its attributes.
func (s *SportService) GetSport(ctx context.Context, id uint) (*domain.Sport, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateSport title-cases the name, so names differing only in case collide.
func (s *SportService) CreateSport(ctx context.Context, sp *domain.Sport) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, sp); err != nil {
		return taken(err, "name")
	}
	s.logger.Info("sport created", "sport_id", sp.ID, "name", sp.Name)
	return nil
}

// CreateAttribute stores the attribute and attaches it to every sport in
// sportIDs.
func (s *SportService) CreateAttribute(ctx context.Context, a *domain.SportAttribute, sportIDs []uint) error {
	if err := a.Validate(); err != nil {
		return err
	}
	for _, id := range sportIDs {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return err
		}
	}
	if err := s.repo.CreateAttribute(ctx, a); err != nil {
		return taken(err, "key")
	}
	for _, id := range sportIDs {
		if err := s.AttachAttribute(ctx, id, a.ID); err != nil {
			return err
		}
	}
	s.logger.Info("sport attribute created", "attribute_id", a.ID, "key", a.Key, "sports", len(sportIDs))
	return nil
}

func (s *SportService) AttachAttribute(ctx context.Context, sportID, attributeID uint) error {
	if err := s.repo.AttachAttribute(ctx, sportID, attributeID); err != nil {
		if errors.Is(err, sport.ErrDuplicate) {
			return nil
		}
		return err
	}
	return nil
}

func (s *SportService) ListUserSports(ctx context.Context, userID uint) ([]domain.UserSport, error) {
	return s.repo.ListUserSports(ctx, userID)
}

// AddUserSport validates details against the sport's attributes before
// saving. A sport can be added once per user.
func (s *SportService) AddUserSport(ctx context.Context, userID uint, in UserSportInput) (*domain.UserSport, error) {
	sp, err := s.repo.FindByID(ctx, in.SportID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			verr := domain.NewValidationError()
			verr.Add("sport_id", "must exist")
			return nil, verr
		}
		return nil, err
	}

	us := &domain.UserSport{UserID: userID, SportID: sp.ID}
	applyInput(us, in)
	if err := us.Validate(sp.Attributes); err != nil {
		return nil, err
	}
	if err := s.repo.CreateUserSport(ctx, us); err != nil {
		return nil, taken(err, "sport_id")
	}
	s.logger.Info("user sport added", "user_id", userID, "sport_id", sp.ID)
	us.Sport = sp
	return us, nil
}

func (s *SportService) UpdateUserSport(ctx context.Context, userID, id uint, in UserSportInput) (*domain.UserSport, error) {
	us, err := s.ownedUserSport(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	attrs, err := s.repo.AttributesFor(ctx, us.SportID)
	if err != nil {
		return nil, err
	}
	applyInput(us, in)
	if err := us.Validate(attrs); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUserSport(ctx, us); err != nil {
		return nil, err
	}
	return us, nil
}

func (s *SportService) DeleteUserSport(ctx context.Context, userID, id uint) error {
	us, err := s.ownedUserSport(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteUserSport(ctx, us.ID)
}

// ownedUserSport hides other users' rows behind not found.
func (s *SportService) ownedUserSport(ctx context.Context, userID, id uint) (*domain.UserSport, error) {
	us, err := s.repo.FindUserSport(ctx, id)
	if err != nil {
		return nil, err
	}
	if us.UserID != userID {
		return nil, sport.ErrUserSportNotFound
	}
	return us, nil
}

func applyInput(us *domain.UserSport, in UserSportInput) {
	if in.Position != nil {
		us.Position = *in.Position
	}
	if in.YearsExperience != nil {
		us.YearsExperience = in.YearsExperience
	}
	if in.Primary != nil {
		us.Primary = *in.Primary
	}
	if in.Details != nil {
		us.Details = in.Details
	}
}

func taken(err error, field string) error {
	if errors.Is(err, sport.ErrDuplicate) {
		verr := domain.NewValidationError()
		verr.Add(field, "has already been taken")
		return verr
	}
	return fmt.Errorf("failed to save: %w", err)
}
