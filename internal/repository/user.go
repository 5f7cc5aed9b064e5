package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	UpdateLocation(ctx context.Context, id uint, latitude, longitude float64) (model.User, error)
}

type user struct {
	db *gorm.DB
}

func newUserRepository(db *gorm.DB) UserRepository {
	return &user{
		db: db,
	}
}

func (u *user) GetByID(ctx context.Context, id uint) (model.User, error) {
	var usr model.User
	result := u.db.WithContext(ctx).First(&usr, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.User{}, fmt.Errorf("%w: user %d", dto.ErrNotFound, id)
		}
		return model.User{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return usr, nil
}

func (u *user) FindAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	result := u.db.WithContext(ctx).Order("id").Find(&users)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return users, nil
}

func (u *user) UpdateLocation(ctx context.Context, id uint, latitude, longitude float64) (model.User, error) {
	usr, err := u.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	usr.Latitude = latitude
	usr.Longitude = longitude
	result := u.db.WithContext(ctx).Save(&usr)
	if result.Error != nil {
		return model.User{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return usr, nil
}
