package service

import (
	"encoding/json"
	"sync"

	"github.com/evacgrid/backend/internal/client"
	"github.com/evacgrid/backend/internal/model"
	"github.com/sirupsen/logrus"
)

// ZoneSubscriber receives every newly opened zone so the owning session can
// re-evaluate its user's membership.
type ZoneSubscriber struct {
	ID    string
	Zones chan model.Zone
}

type ZoneBroker interface {
	Subscribe(id string) *ZoneSubscriber
	Unsubscribe(id string)
	Publish(zone model.Zone)
}

// zoneBroker fans zones out through RabbitMQ when a broker connection exists,
// so sessions on other instances hear about zones opened here. Without one it
// degrades to in-process delivery.
type zoneBroker struct {
	rabbitClient    client.RabbitClient
	subscribers     map[string]*ZoneSubscriber
	subscriberMutex sync.RWMutex
}

func newZoneBroker(rabbitClient client.RabbitClient) ZoneBroker {
	if rabbitClient == nil {
		logrus.Warn("Zone broker running in-process only (RabbitMQ not available)")
	}
	return &zoneBroker{
		rabbitClient: rabbitClient,
		subscribers:  make(map[string]*ZoneSubscriber),
	}
}

func (b *zoneBroker) Subscribe(id string) *ZoneSubscriber {
	b.subscriberMutex.Lock()
	defer b.subscriberMutex.Unlock()

	if subscriber, exists := b.subscribers[id]; exists {
		return subscriber
	}

	subscriber := &ZoneSubscriber{
		ID:    id,
		Zones: make(chan model.Zone, 16),
	}
	b.subscribers[id] = subscriber

	if b.rabbitClient != nil {
		msgChan, err := b.rabbitClient.SubscribeToMessages(id)
		if err != nil {
			logrus.Errorf("Failed to subscribe %s to zone fan-out: %v", id, err)
			return subscriber
		}

		go func() {
			for msg := range msgChan {
				var zone model.Zone
				if err := json.Unmarshal(msg, &zone); err != nil {
					logrus.Errorf("Error unmarshaling broadcast zone: %v", err)
					continue
				}
				b.send(subscriber, zone)
			}
		}()
	}

	return subscriber
}

func (b *zoneBroker) Unsubscribe(id string) {
	b.subscriberMutex.Lock()
	defer b.subscriberMutex.Unlock()

	if b.rabbitClient != nil {
		if err := b.rabbitClient.UnsubscribeFromMessages(id); err != nil {
			logrus.Errorf("Failed to unsubscribe %s from zone fan-out: %v", id, err)
		}
	}

	if subscriber, exists := b.subscribers[id]; exists {
		delete(b.subscribers, id)
		close(subscriber.Zones)
	}
}

func (b *zoneBroker) Publish(zone model.Zone) {
	if b.rabbitClient != nil {
		payload, err := json.Marshal(zone)
		if err != nil {
			logrus.Errorf("Error marshaling zone for broadcast: %v", err)
			return
		}
		if err := b.rabbitClient.PublishMessage(payload); err != nil {
			logrus.Errorf("Error broadcasting zone %d: %v", zone.ID, err)
		}
		// Local subscribers hear it back through their fan-out queues.
		return
	}

	b.subscriberMutex.RLock()
	subscribers := make([]*ZoneSubscriber, 0, len(b.subscribers))
	for _, subscriber := range b.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	b.subscriberMutex.RUnlock()

	for _, subscriber := range subscribers {
		b.send(subscriber, zone)
	}
}

// send delivers without blocking; a session that cannot keep up just misses
// the nudge and catches the zone on its next location update.
func (b *zoneBroker) send(subscriber *ZoneSubscriber, zone model.Zone) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Recovered from panic in zone delivery: %v", r)
		}
	}()

	b.subscriberMutex.RLock()
	stillActive := b.subscribers[subscriber.ID] == subscriber
	b.subscriberMutex.RUnlock()
	if !stillActive {
		return
	}

	select {
	case subscriber.Zones <- zone:
	default:
	}
}
