package service

import (
	"context"
	"fmt"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/geo"
	"github.com/evacgrid/backend/internal/model"
	"github.com/evacgrid/backend/internal/repository"
)

type CenterService interface {
	// Nearest returns the registered center closest to p. On equal distances
	// the first center in repository order wins, consistently across calls.
	Nearest(ctx context.Context, p geo.Point) (model.Center, error)
	FindAll(ctx context.Context) ([]model.Center, error)
}

type centerService struct {
	centerRepository repository.CenterRepository
	cfg              dto.Config
}

func newCenterService(centerRepository repository.CenterRepository, cfg dto.Config) CenterService {
	return &centerService{
		centerRepository: centerRepository,
		cfg:              cfg,
	}
}

func (c *centerService) Nearest(ctx context.Context, p geo.Point) (model.Center, error) {
	ctx, cancel := opContext(ctx, c.cfg.RepoTimeout)
	defer cancel()

	centers, err := c.centerRepository.FindAll(ctx)
	if err != nil {
		return model.Center{}, err
	}
	if len(centers) == 0 {
		return model.Center{}, fmt.Errorf("%w: no centers registered", dto.ErrNotFound)
	}

	nearest := centers[0]
	minDistance := geo.Distance(p, nearest.Position())
	for _, center := range centers[1:] {
		if d := geo.Distance(p, center.Position()); d < minDistance {
			nearest = center
			minDistance = d
		}
	}

	return nearest, nil
}

func (c *centerService) FindAll(ctx context.Context) ([]model.Center, error) {
	ctx, cancel := opContext(ctx, c.cfg.RepoTimeout)
	defer cancel()

	return c.centerRepository.FindAll(ctx)
}
