// Package gateway speaks the realtime JSON envelope with connected users and
// IoT devices and drives the evacuation lifecycle from inbound messages.
package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/service"
	"github.com/sirupsen/logrus"
)

// Peer is one connected client as seen by the router: it can receive events
// and remembers which user it speaks for.
type Peer interface {
	service.Pusher
	BindUser(id uint)
}

type Router struct {
	userService       service.UserService
	deviceService     service.DeviceService
	zoneService       service.ZoneService
	evacuationService service.EvacuationService
}

func NewRouter(services service.Services) *Router {
	return &Router{
		userService:       services.User(),
		deviceService:     services.Device(),
		zoneService:       services.Zone(),
		evacuationService: services.Evacuation(),
	}
}

// Route dispatches one raw inbound frame. It never propagates an error to
// the transport; every failure becomes an error reply on the same channel.
func (r *Router) Route(ctx context.Context, peer Peer, raw []byte) {
	var envelope dto.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		r.reply(peer, dto.ErrorReply{Error: "Invalid data format"})
		return
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		r.reply(peer, dto.ErrorReply{Error: "Data is missing in the message"})
		return
	}

	switch envelope.Type {
	case dto.MessageUserLocationUpdate:
		r.handleLocationUpdate(ctx, peer, envelope.Data)
	case dto.MessageInit:
		r.handleInit(ctx, peer, envelope.Data)
	case dto.MessageEmergencyAlert:
		r.handleEmergencyAlert(ctx, peer, envelope.Data)
	default:
		r.reply(peer, dto.ErrorReply{Error: "Unrecognized message type"})
	}
}

func (r *Router) handleLocationUpdate(ctx context.Context, peer Peer, data json.RawMessage) {
	var payload dto.LocationUpdateData
	if err := json.Unmarshal(data, &payload); err != nil || payload.Latitude == nil || payload.Longitude == nil {
		r.reply(peer, dto.ErrorReply{Error: "Invalid latitude or longitude"})
		return
	}
	if payload.UserID == nil {
		r.reply(peer, dto.ErrorReply{Error: "User not found"})
		return
	}

	user, err := r.userService.UpdateLocation(ctx, *payload.UserID, *payload.Latitude, *payload.Longitude)
	if errors.Is(err, dto.ErrNotFound) {
		r.reply(peer, dto.ErrorReply{Error: "User not found"})
		return
	} else if err != nil {
		logrus.WithError(err).Error("Error updating user location")
		r.reply(peer, dto.ErrorReply{Error: "Error updating user location"})
		return
	}

	peer.BindUser(user.ID)

	if err := r.evacuationService.OnLocationUpdate(ctx, user, peer); err != nil {
		logrus.WithError(err).Errorf("Zone membership evaluation failed for user %s", user.Username)
		r.reply(peer, dto.ErrorReply{Error: "Error updating user location"})
		return
	}
	if err := r.evacuationService.OnProximityCheck(ctx, user, peer); err != nil {
		logrus.WithError(err).Errorf("Center proximity check failed for user %s", user.Username)
		r.reply(peer, dto.ErrorReply{Error: "Error updating user location"})
		return
	}

	r.reply(peer, dto.SuccessReply{Success: "User location updated successfully"})
}

func (r *Router) handleInit(ctx context.Context, peer Peer, data json.RawMessage) {
	var payload dto.HandshakeData
	if err := json.Unmarshal(data, &payload); err != nil || payload.MACAddr == "" {
		r.reply(peer, dto.ErrorReply{Error: "Invalid MACADDR"})
		return
	}

	device, err := r.deviceService.Handshake(ctx, payload.MACAddr)
	if errors.Is(err, dto.ErrNotFound) {
		r.reply(peer, dto.ErrorReply{Error: "IoT device not found"})
		return
	} else if err != nil {
		logrus.WithError(err).Error("Error during device initialization")
		r.reply(peer, dto.ErrorReply{Error: "Error during initialization"})
		return
	}

	r.reply(peer, device)
}

func (r *Router) handleEmergencyAlert(ctx context.Context, peer Peer, data json.RawMessage) {
	var payload dto.HandshakeData
	if err := json.Unmarshal(data, &payload); err != nil || payload.MACAddr == "" {
		r.reply(peer, dto.ErrorReply{Error: "Invalid MACADDR"})
		return
	}

	device, err := r.deviceService.Handshake(ctx, payload.MACAddr)
	if errors.Is(err, dto.ErrNotFound) {
		r.reply(peer, dto.ErrorReply{Error: "IoT device not found"})
		return
	} else if err != nil {
		logrus.WithError(err).Error("Error during emergency alert handling")
		r.reply(peer, dto.ErrorReply{Error: "Error during emergency alert handling"})
		return
	}

	zone, err := r.zoneService.CreateFromDevice(ctx, device)
	if err != nil {
		logrus.WithError(err).Errorf("Failed to create zone for device %s", device.MACAddr)
		r.reply(peer, dto.ErrorReply{Error: "Error during emergency alert handling"})
		return
	}

	r.reply(peer, zone)
}

func (r *Router) reply(peer Peer, v any) {
	if err := peer.Push(v); err != nil {
		logrus.WithError(err).Error("Failed to send reply")
	}
}
