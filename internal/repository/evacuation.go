package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EvacuationRepository interface {
	FindAll(ctx context.Context) ([]model.Evacuation, error)
	FindByUser(ctx context.Context, userID uint) (model.Evacuation, error)
	FindOpen(ctx context.Context, userID, zoneID uint) (model.Evacuation, error)
	FindByUserAndCenter(ctx context.Context, userID, centerID uint) (model.Evacuation, error)
	// CreateIfAbsent inserts the evacuation unless one already exists for the
	// same (user, start zone). The second return value reports whether a row
	// was actually written.
	CreateIfAbsent(ctx context.Context, evacuation model.Evacuation) (model.Evacuation, bool, error)
	Delete(ctx context.Context, id uint) error
}

type evacuation struct {
	db *gorm.DB
}

func newEvacuationRepository(db *gorm.DB) EvacuationRepository {
	return &evacuation{
		db: db,
	}
}

func (e *evacuation) FindAll(ctx context.Context) ([]model.Evacuation, error) {
	var evacuations []model.Evacuation
	result := e.db.WithContext(ctx).Order("id").Find(&evacuations)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return evacuations, nil
}

func (e *evacuation) FindByUser(ctx context.Context, userID uint) (model.Evacuation, error) {
	var ev model.Evacuation
	result := e.db.WithContext(ctx).Where("user_id = ?", userID).First(&ev)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.Evacuation{}, fmt.Errorf("%w: evacuation for user %d", dto.ErrNotFound, userID)
		}
		return model.Evacuation{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return ev, nil
}

func (e *evacuation) FindOpen(ctx context.Context, userID, zoneID uint) (model.Evacuation, error) {
	var ev model.Evacuation
	result := e.db.WithContext(ctx).
		Where("user_id = ? AND start_zone_id = ?", userID, zoneID).
		First(&ev)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.Evacuation{}, fmt.Errorf("%w: evacuation for user %d in zone %d", dto.ErrNotFound, userID, zoneID)
		}
		return model.Evacuation{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return ev, nil
}

func (e *evacuation) FindByUserAndCenter(ctx context.Context, userID, centerID uint) (model.Evacuation, error) {
	var ev model.Evacuation
	result := e.db.WithContext(ctx).
		Where("user_id = ? AND end_center_id = ?", userID, centerID).
		First(&ev)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.Evacuation{}, fmt.Errorf("%w: evacuation for user %d toward center %d", dto.ErrNotFound, userID, centerID)
		}
		return model.Evacuation{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return ev, nil
}

func (e *evacuation) CreateIfAbsent(ctx context.Context, ev model.Evacuation) (model.Evacuation, bool, error) {
	result := e.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "start_zone_id"}},
			DoNothing: true,
		}).
		Create(&ev)
	if result.Error != nil {
		return model.Evacuation{}, false, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return ev, result.RowsAffected > 0, nil
}

func (e *evacuation) Delete(ctx context.Context, id uint) error {
	result := e.db.WithContext(ctx).Delete(&model.Evacuation{}, id)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return nil
}
