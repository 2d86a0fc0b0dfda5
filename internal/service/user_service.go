package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
	"github.com/agriclinic/agri-clinic-hub/internal/repo/postgres"
	"github.com/agriclinic/agri-clinic-hub/pkg/events"
	"github.com/agriclinic/agri-clinic-hub/pkg/logger"
)

type UserService interface {
	ListUsers(ctx context.Context, limit, offset int) ([]domain.UserInfo, error)
	ListVerifiedOfficers(ctx context.Context, limit, offset int) ([]domain.UserInfo, error)
	VerifyOfficer(ctx context.Context, userID int64) (*domain.UserInfo, error)
}

type userService struct {
	userRepo  postgres.UserRepository
	publisher events.Publisher
}

func NewUserService(userRepo postgres.UserRepository, publisher events.Publisher) UserService {
	return &userService{userRepo: userRepo, publisher: publisher}
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.UserInfo, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	infos := make([]domain.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, *users[i].ToUserInfo())
	}
	return infos, nil
}

// ListVerifiedOfficers is what farmers see when picking a consultant; it
// only surfaces officers an admin has already verified.
func (s *userService) ListVerifiedOfficers(ctx context.Context, limit, offset int) ([]domain.UserInfo, error) {
	officers, err := s.userRepo.ListVerifiedOfficers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list officers: %w", err)
	}

	infos := make([]domain.UserInfo, 0, len(officers))
	for i := range officers {
		infos = append(infos, *officers[i].ToUserInfo())
	}
	return infos, nil
}

func (s *userService) VerifyOfficer(ctx context.Context, userID int64) (*domain.UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	if user.Role != domain.RoleOfficer {
		return nil, domain.Validationf("only officer accounts require verification")
	}

	if !user.IsVerified {
		if err := s.userRepo.MarkVerified(ctx, userID); err != nil {
			if err == pgx.ErrNoRows {
				return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to verify user: %w", err)
		}
		user.IsVerified = true

		if err := s.publisher.Publish(ctx, events.UserVerified, events.UserVerifiedEvent{
			UserID:     user.ID,
			VerifiedAt: user.UpdatedAt,
		}); err != nil {
			logger.WarnContext(ctx, "Failed to publish user verified event", "error", err, "user_id", user.ID)
		}
	}

	return user.ToUserInfo(), nil
}
