package service

import (
	"context"
	"time"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/geo"
	"github.com/evacgrid/backend/internal/model"
	"github.com/evacgrid/backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// DefaultZoneRadiusMeters is used for device-triggered zones when the device
// has no radius configured.
const DefaultZoneRadiusMeters = 500.0

const deviceZoneEmergencyTypeID = 1

type ZoneService interface {
	// FindActiveZonesContaining returns every active zone whose circle
	// contains p, in the repository's natural order. Callers that open
	// evacuations act on the first match only.
	FindActiveZonesContaining(ctx context.Context, p geo.Point) ([]model.Zone, error)
	FindActive(ctx context.Context) ([]model.Zone, error)
	// CreateFromDevice opens a new active zone centered on the device and
	// announces it to all connected sessions.
	CreateFromDevice(ctx context.Context, device model.IoTDevice) (model.Zone, error)
}

type zoneService struct {
	zoneRepository repository.ZoneRepository
	zoneBroker     ZoneBroker
	cfg            dto.Config
}

func newZoneService(zoneRepository repository.ZoneRepository, zoneBroker ZoneBroker, cfg dto.Config) ZoneService {
	return &zoneService{
		zoneRepository: zoneRepository,
		zoneBroker:     zoneBroker,
		cfg:            cfg,
	}
}

func (z *zoneService) FindActiveZonesContaining(ctx context.Context, p geo.Point) ([]model.Zone, error) {
	ctx, cancel := opContext(ctx, z.cfg.RepoTimeout)
	defer cancel()

	zones, err := z.zoneRepository.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]model.Zone, 0, len(zones))
	for _, zone := range zones {
		if geo.IsWithin(p, zone.Center(), zone.Radius) {
			matches = append(matches, zone)
		}
	}

	return matches, nil
}

func (z *zoneService) FindActive(ctx context.Context) ([]model.Zone, error) {
	ctx, cancel := opContext(ctx, z.cfg.RepoTimeout)
	defer cancel()

	return z.zoneRepository.FindActive(ctx)
}

func (z *zoneService) CreateFromDevice(ctx context.Context, device model.IoTDevice) (model.Zone, error) {
	ctx, cancel := opContext(ctx, z.cfg.RepoTimeout)
	defer cancel()

	radius := DefaultZoneRadiusMeters
	if device.DefaultZoneRadius != nil && *device.DefaultZoneRadius > 0 {
		radius = *device.DefaultZoneRadius
	}

	zone, err := z.zoneRepository.Create(ctx, model.Zone{
		Name:            "IoT created Zone",
		StartedAt:       time.Now().UTC(),
		EmergencyTypeID: deviceZoneEmergencyTypeID,
		Latitude:        device.Latitude,
		Longitude:       device.Longitude,
		Radius:          radius,
	})
	if err != nil {
		return model.Zone{}, err
	}

	logrus.Infof("Device %s opened zone %d (radius %.0fm)", device.MACAddr, zone.ID, zone.Radius)
	z.zoneBroker.Publish(zone)

	return zone, nil
}
