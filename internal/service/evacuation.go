package service

import (
	"context"
	"errors"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/geo"
	"github.com/evacgrid/backend/internal/model"
	"github.com/evacgrid/backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// ArrivalThresholdMeters is the radius around a center within which a user
// counts as arrived.
const ArrivalThresholdMeters = 50.0

// EvacuationService is the lifecycle state machine. A user is NORMAL while
// they have no open evacuation, EVACUATING while exactly one exists, and
// returns to NORMAL on arrival at the assigned center. Leaving a zone without
// arriving never closes an evacuation; only center proximity does.
type EvacuationService interface {
	// OnLocationUpdate opens an evacuation when the user sits inside an
	// active zone without one. Idempotent per (user, zone).
	OnLocationUpdate(ctx context.Context, user model.User, push Pusher) error
	// OnProximityCheck completes the evacuation assigned to the nearest
	// center once the user is within the arrival threshold.
	OnProximityCheck(ctx context.Context, user model.User, push Pusher) error
	// CheckAllUsers re-evaluates zone membership for every known user. One
	// user's failure never aborts the sweep.
	CheckAllUsers(ctx context.Context, push Pusher) error

	FindAll(ctx context.Context) ([]model.Evacuation, error)
	FindByUser(ctx context.Context, userID uint) (model.Evacuation, error)
}

type evacuationService struct {
	userRepository       repository.UserRepository
	evacuationRepository repository.EvacuationRepository
	zoneService          ZoneService
	centerService        CenterService
	notificationService  NotificationService
	cfg                  dto.Config
}

func newEvacuationService(
	userRepository repository.UserRepository,
	evacuationRepository repository.EvacuationRepository,
	zoneService ZoneService,
	centerService CenterService,
	notificationService NotificationService,
	cfg dto.Config,
) EvacuationService {
	return &evacuationService{
		userRepository:       userRepository,
		evacuationRepository: evacuationRepository,
		zoneService:          zoneService,
		centerService:        centerService,
		notificationService:  notificationService,
		cfg:                  cfg,
	}
}

func (e *evacuationService) OnLocationUpdate(ctx context.Context, user model.User, push Pusher) error {
	ctx, cancel := opContext(ctx, e.cfg.RepoTimeout)
	defer cancel()

	zones, err := e.zoneService.FindActiveZonesContaining(ctx, user.Position())
	if err != nil {
		return err
	}
	if len(zones) == 0 {
		// Outside every active zone. Exiting a zone is not a closing
		// condition; arrival handles completion.
		return nil
	}

	// First matching zone wins and evaluation stops, so overlapping zones
	// never open a second evacuation for the same user.
	zone := zones[0]

	if _, err := e.evacuationRepository.FindOpen(ctx, user.ID, zone.ID); err == nil {
		return nil // already evacuating from this zone
	} else if !errors.Is(err, dto.ErrNotFound) {
		return err
	}

	center, err := e.centerService.Nearest(ctx, user.Position())
	if errors.Is(err, dto.ErrNotFound) {
		logrus.Warnf("User %s is inside zone %q but no evacuation center is registered", user.Username, zone.Name)
		return nil
	} else if err != nil {
		return err
	}

	zoneID := zone.ID
	evacuation, created, err := e.evacuationRepository.CreateIfAbsent(ctx, model.Evacuation{
		StartZoneID: &zoneID,
		EndCenterID: center.ID,
		UserID:      user.ID,
	})
	if err != nil {
		return err
	}
	if !created {
		// Lost a concurrent race for the same (user, zone); the winning
		// update already notified.
		return nil
	}

	logrus.Infof("User %s entered zone %q, evacuation %d toward center %q", user.Username, zone.Name, evacuation.ID, center.Name)
	e.notificationService.EmitZoneEntry(ctx, push, user, zone, evacuation)

	return nil
}

func (e *evacuationService) OnProximityCheck(ctx context.Context, user model.User, push Pusher) error {
	ctx, cancel := opContext(ctx, e.cfg.RepoTimeout)
	defer cancel()

	center, err := e.centerService.Nearest(ctx, user.Position())
	if errors.Is(err, dto.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	if geo.Distance(user.Position(), center.Position()) > ArrivalThresholdMeters {
		return nil
	}

	evacuation, err := e.evacuationRepository.FindByUserAndCenter(ctx, user.ID, center.ID)
	if errors.Is(err, dto.ErrNotFound) {
		// Arriving at a center with no open evacuation toward it is not an
		// error.
		return nil
	} else if err != nil {
		return err
	}

	// Complete the transition first; the arrival push must not be able to
	// resurrect a deleted record.
	if err := e.evacuationRepository.Delete(ctx, evacuation.ID); err != nil {
		return err
	}

	logrus.Infof("User %s arrived at center %q, evacuation %d completed", user.Username, center.Name, evacuation.ID)
	e.notificationService.EmitArrival(ctx, push, user, center)

	return nil
}

func (e *evacuationService) CheckAllUsers(ctx context.Context, push Pusher) error {
	listCtx, cancel := opContext(ctx, e.cfg.RepoTimeout)
	users, err := e.userRepository.FindAll(listCtx)
	cancel()
	if err != nil {
		return err
	}

	for _, user := range users {
		if err := e.OnLocationUpdate(ctx, user, push); err != nil {
			logrus.WithError(err).Errorf("Zone membership sweep failed for user %s", user.Username)
		}
	}

	return nil
}

func (e *evacuationService) FindAll(ctx context.Context) ([]model.Evacuation, error) {
	ctx, cancel := opContext(ctx, e.cfg.RepoTimeout)
	defer cancel()

	return e.evacuationRepository.FindAll(ctx)
}

func (e *evacuationService) FindByUser(ctx context.Context, userID uint) (model.Evacuation, error) {
	ctx, cancel := opContext(ctx, e.cfg.RepoTimeout)
	defer cancel()

	return e.evacuationRepository.FindByUser(ctx, userID)
}
