package service

import (
	"context"
	"time"

	"github.com/evacgrid/backend/internal/client"
	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/notify"
	"github.com/evacgrid/backend/internal/repository"
)

type Services interface {
	User() UserService
	Device() DeviceService
	Zone() ZoneService
	Center() CenterService
	Evacuation() EvacuationService
	Broker() ZoneBroker
}

type services struct {
	userService         UserService
	deviceService       DeviceService
	zoneService         ZoneService
	centerService     CenterService
	evacuationService EvacuationService
	zoneBroker        ZoneBroker
}

func NewServices(repositories repository.Repositories, cfg dto.Config, clients client.Clients, publisher notify.Publisher) Services {
	zoneBroker := newZoneBroker(clients.RabbitMQClient())
	zoneService := newZoneService(repositories.Zone(), zoneBroker, cfg)
	centerService := newCenterService(repositories.Center(), cfg)
	notificationService := newNotificationService(publisher)
	evacuationService := newEvacuationService(
		repositories.User(),
		repositories.Evacuation(),
		zoneService,
		centerService,
		notificationService,
		cfg,
	)
	return &services{
		userService:       newUserService(repositories.User(), cfg),
		deviceService:     newDeviceService(repositories.IoTDevice(), cfg),
		zoneService:       zoneService,
		centerService:     centerService,
		evacuationService: evacuationService,
		zoneBroker:        zoneBroker,
	}
}

func (s services) User() UserService {
	return s.userService
}

func (s services) Device() DeviceService {
	return s.deviceService
}

func (s services) Zone() ZoneService {
	return s.zoneService
}

func (s services) Center() CenterService {
	return s.centerService
}

func (s services) Evacuation() EvacuationService {
	return s.evacuationService
}

func (s services) Broker() ZoneBroker {
	return s.zoneBroker
}

// opContext bounds a service operation's persistence work so a stuck store
// surfaces as a deadline error instead of a hung session.
func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// Pusher delivers one outbound event to a connected client. A nil Pusher is
// legal: state transitions still commit, only the push is skipped.
type Pusher interface {
	Push(v any) error
}
