package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/model"
	"gorm.io/gorm"
)

type ZoneRepository interface {
	GetByID(ctx context.Context, id uint) (model.Zone, error)
	// FindActive returns zones with no end timestamp in primary-key order.
	// Callers rely on that order being stable.
	FindActive(ctx context.Context) ([]model.Zone, error)
	Create(ctx context.Context, zone model.Zone) (model.Zone, error)
}

type zone struct {
	db *gorm.DB
}

func newZoneRepository(db *gorm.DB) ZoneRepository {
	return &zone{
		db: db,
	}
}

func (z *zone) GetByID(ctx context.Context, id uint) (model.Zone, error) {
	var zn model.Zone
	result := z.db.WithContext(ctx).Preload("EmergencyType").First(&zn, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.Zone{}, fmt.Errorf("%w: zone %d", dto.ErrNotFound, id)
		}
		return model.Zone{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return zn, nil
}

func (z *zone) FindActive(ctx context.Context) ([]model.Zone, error) {
	var zones []model.Zone
	result := z.db.WithContext(ctx).
		Preload("EmergencyType").
		Where("ended_at IS NULL").
		Order("id").
		Find(&zones)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return zones, nil
}

func (z *zone) Create(ctx context.Context, zn model.Zone) (model.Zone, error) {
	result := z.db.WithContext(ctx).Create(&zn)
	if result.Error != nil {
		return model.Zone{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return zn, nil
}
