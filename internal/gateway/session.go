package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/model"
	"github.com/evacgrid/backend/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Session owns one WebSocket connection. It is handed explicitly to every
// handler invocation; there is no global connection registry.
type Session struct {
	id       string
	conn     *websocket.Conn
	router   *Router
	services service.Services

	writeMutex sync.Mutex

	userMutex sync.RWMutex
	userID    *uint
}

func NewSession(conn *websocket.Conn, router *Router, services service.Services) *Session {
	return &Session{
		id:       fmt.Sprintf("sess_%s", uuid.NewString()),
		conn:     conn,
		router:   router,
		services: services,
	}
}

// Push writes one outbound event. The connection allows a single concurrent
// writer, so all sends funnel through here.
func (s *Session) Push(v any) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	if err := s.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("%w: %v", dto.ErrDelivery, err)
	}
	return nil
}

// BindUser remembers which user this connection speaks for, so broadcast
// zones can be re-evaluated against them.
func (s *Session) BindUser(id uint) {
	s.userMutex.Lock()
	defer s.userMutex.Unlock()
	s.userID = &id
}

func (s *Session) boundUser() (uint, bool) {
	s.userMutex.RLock()
	defer s.userMutex.RUnlock()
	if s.userID == nil {
		return 0, false
	}
	return *s.userID, true
}

// Run services the connection until it closes: one goroutine reads and routes
// inbound frames, the other reacts to zones opened elsewhere.
func (s *Session) Run(ctx context.Context) {
	log := logrus.WithField("session", s.id)

	subscriber := s.services.Broker().Subscribe(s.id)
	defer s.services.Broker().Unsubscribe(s.id)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Every known user gets re-checked against the active zones when a
	// connection opens, so zones declared while nobody listened still
	// trigger evacuations.
	if err := s.services.Evacuation().CheckAllUsers(ctx, s); err != nil {
		log.WithError(err).Error("Connection-open membership sweep failed")
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for {
			_, raw, err := s.conn.ReadMessage()
			if err != nil {
				log.Infof("Connection closed: %v", err)
				cancel()
				return
			}
			s.router.Route(ctx, s, raw)
		}
	}()

	go func() {
		defer wg.Done()
		for {
			select {
			case zone, ok := <-subscriber.Zones:
				if !ok {
					return
				}
				s.reevaluate(ctx, zone)
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
}

func (s *Session) reevaluate(ctx context.Context, zone model.Zone) {
	userID, ok := s.boundUser()
	if !ok {
		// Device sessions do not evacuate.
		return
	}

	user, err := s.services.User().GetByID(ctx, userID)
	if err != nil {
		logrus.WithError(err).Errorf("Failed to load user %d after zone %d broadcast", userID, zone.ID)
		return
	}

	if err := s.services.Evacuation().OnLocationUpdate(ctx, user, s); err != nil {
		logrus.WithError(err).Errorf("Re-evaluation after zone %d failed for user %s", zone.ID, user.Username)
	}
}
