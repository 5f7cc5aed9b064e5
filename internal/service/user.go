package service

import (
	"context"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/model"
	"github.com/evacgrid/backend/internal/repository"
)

type UserService interface {
	GetByID(ctx context.Context, id uint) (model.User, error)
	// UpdateLocation persists the user's new coordinates, the single mutable
	// field that drives all re-evaluation.
	UpdateLocation(ctx context.Context, id uint, latitude, longitude float64) (model.User, error)
}

type userService struct {
	userRepository repository.UserRepository
	cfg            dto.Config
}

func newUserService(userRepository repository.UserRepository, cfg dto.Config) UserService {
	return &userService{
		userRepository: userRepository,
		cfg:            cfg,
	}
}

func (u *userService) GetByID(ctx context.Context, id uint) (model.User, error) {
	ctx, cancel := opContext(ctx, u.cfg.RepoTimeout)
	defer cancel()

	return u.userRepository.GetByID(ctx, id)
}

func (u *userService) UpdateLocation(ctx context.Context, id uint, latitude, longitude float64) (model.User, error) {
	ctx, cancel := opContext(ctx, u.cfg.RepoTimeout)
	defer cancel()

	return u.userRepository.UpdateLocation(ctx, id, latitude, longitude)
}
