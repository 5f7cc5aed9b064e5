package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/model"
	"gorm.io/gorm"
)

type IoTDeviceRepository interface {
	GetByMAC(ctx context.Context, macAddr string) (model.IoTDevice, error)
}

type iotDevice struct {
	db *gorm.DB
}

func newIoTDeviceRepository(db *gorm.DB) IoTDeviceRepository {
	return &iotDevice{
		db: db,
	}
}

func (i *iotDevice) GetByMAC(ctx context.Context, macAddr string) (model.IoTDevice, error) {
	var device model.IoTDevice
	result := i.db.WithContext(ctx).Where("macaddr = ?", macAddr).First(&device)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.IoTDevice{}, fmt.Errorf("%w: iot device %s", dto.ErrNotFound, macAddr)
		}
		return model.IoTDevice{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, result.Error)
	}

	return device, nil
}
