package repository

import (
	"github.com/evacgrid/backend/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Repositories interface {
	User() UserRepository
	Zone() ZoneRepository
	Center() CenterRepository
	Evacuation() EvacuationRepository
	IoTDevice() IoTDeviceRepository
}

type repositories struct {
	userRepository       UserRepository
	zoneRepository       ZoneRepository
	centerRepository     CenterRepository
	evacuationRepository EvacuationRepository
	iotDeviceRepository  IoTDeviceRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	err := db.AutoMigrate(
		&model.User{},
		&model.EmergencyType{},
		&model.Zone{},
		&model.Center{},
		&model.Evacuation{},
		&model.IoTDevice{},
	)
	if err != nil {
		logrus.Panic(err)
	}
	return &repositories{
		userRepository:       newUserRepository(db),
		zoneRepository:       newZoneRepository(db),
		centerRepository:     newCenterRepository(db),
		evacuationRepository: newEvacuationRepository(db),
		iotDeviceRepository:  newIoTDeviceRepository(db),
	}
}

func (r repositories) User() UserRepository {
	return r.userRepository
}

func (r repositories) Zone() ZoneRepository {
	return r.zoneRepository
}

func (r repositories) Center() CenterRepository {
	return r.centerRepository
}

func (r repositories) Evacuation() EvacuationRepository {
	return r.evacuationRepository
}

func (r repositories) IoTDevice() IoTDeviceRepository {
	return r.iotDeviceRepository
}
