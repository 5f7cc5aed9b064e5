package service

import (
	"context"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/model"
	"github.com/evacgrid/backend/internal/repository"
)

type DeviceService interface {
	// Handshake resolves a device by MAC address. No state transition.
	Handshake(ctx context.Context, macAddr string) (model.IoTDevice, error)
}

type deviceService struct {
	deviceRepository repository.IoTDeviceRepository
	cfg              dto.Config
}

func newDeviceService(deviceRepository repository.IoTDeviceRepository, cfg dto.Config) DeviceService {
	return &deviceService{
		deviceRepository: deviceRepository,
		cfg:              cfg,
	}
}

func (d *deviceService) Handshake(ctx context.Context, macAddr string) (model.IoTDevice, error) {
	ctx, cancel := opContext(ctx, d.cfg.RepoTimeout)
	defer cancel()

	return d.deviceRepository.GetByMAC(ctx, macAddr)
}
