package repository

import (
	"context"
	"fmt"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/model"
	"gorm.io/gorm"
)

type CenterRepository interface {
	// FindAll returns every registered center in primary-key order. The
	// nearest-center tie-break depends on that order being stable.
	FindAll(ctx context.Context) ([]model.Center, error)
}

type center struct {
	db *gorm.DB
}

func newCenterRepository(db *gorm.DB) CenterRepository {
	return &center{
		db: db,
	}
}

func (c *center) FindAll(ctx context.Context) ([]model.Center, error) {
	var centers []model.Center
	result := c.db.WithContext(ctx).Order("id").Find(&centers)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return centers, nil
}
