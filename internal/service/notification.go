package service

import (
	"context"
	"fmt"
	"time"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/model"
	"github.com/evacgrid/backend/internal/notify"
	"github.com/sirupsen/logrus"
)

// NotificationService fans lifecycle transitions out to the affected client
// and the email queue. Everything here is fire-and-forget: failures are
// logged and never reach the caller, because the state change they announce
// has already been committed.
type NotificationService interface {
	EmitZoneEntry(ctx context.Context, push Pusher, user model.User, zone model.Zone, evacuation model.Evacuation)
	EmitArrival(ctx context.Context, push Pusher, user model.User, center model.Center)
}

type notificationService struct {
	publisher notify.Publisher
}

func newNotificationService(publisher notify.Publisher) NotificationService {
	return &notificationService{
		publisher: publisher,
	}
}

func (n *notificationService) EmitZoneEntry(ctx context.Context, push Pusher, user model.User, zone model.Zone, evacuation model.Evacuation) {
	if push != nil {
		event := dto.WarningEvent{
			Type:              dto.EventWarning,
			Message:           fmt.Sprintf("User %s is within an emergency zone! Evacuation initiated.", user.Username),
			EvacuationDetails: evacuation,
		}
		if err := push.Push(event); err != nil {
			logrus.WithError(err).Errorf("Failed to push warning to user %s", user.Username)
		}
	}

	if user.Email == "" {
		logrus.Warnf("User %s has no email address, skipping danger alert mail", user.Username)
		return
	}

	job := notify.EmailJob{
		To:      user.Email,
		Subject: fmt.Sprintf("Danger alert: %s", zone.Name),
		Body: fmt.Sprintf(
			"Dear %s,\n\nYou are inside the emergency zone %q.\nEmergency: %s. %s\n\nAn evacuation to the nearest safe center has been started for you (evacuation #%d). Please proceed there immediately.",
			user.Username,
			zone.Name,
			zone.EmergencyType.Name,
			zone.EmergencyType.Description,
			evacuation.ID,
		),
		UserID:   user.ID,
		ZoneID:   zone.ID,
		QueuedAt: time.Now().UTC(),
	}
	if err := n.publisher.Publish(ctx, job); err != nil {
		logrus.WithError(err).Errorf("Failed to enqueue danger alert mail for user %s", user.Username)
	}
}

func (n *notificationService) EmitArrival(ctx context.Context, push Pusher, user model.User, center model.Center) {
	if push == nil {
		return
	}

	event := dto.ProximityEvent{
		Type:          dto.EventProximityToCenter,
		Message:       fmt.Sprintf("User %s is within 50 meters of the nearest center. End evacuation?", user.Username),
		CenterDetails: center,
	}
	if err := push.Push(event); err != nil {
		logrus.WithError(err).Errorf("Failed to push arrival notice to user %s", user.Username)
	}
}
