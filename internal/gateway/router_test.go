package gateway

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/evacgrid/backend/internal/client"
	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/model"
	"github.com/evacgrid/backend/internal/notify"
	"github.com/evacgrid/backend/internal/repository"
	"github.com/evacgrid/backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepository struct {
	users []model.User
}

func (f *fakeUserRepository) GetByID(_ context.Context, id uint) (model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("%w: user %d", dto.ErrNotFound, id)
}

func (f *fakeUserRepository) FindAll(context.Context) ([]model.User, error) {
	return f.users, nil
}

func (f *fakeUserRepository) UpdateLocation(_ context.Context, id uint, latitude, longitude float64) (model.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].Latitude = latitude
			f.users[i].Longitude = longitude
			return f.users[i], nil
		}
	}
	return model.User{}, fmt.Errorf("%w: user %d", dto.ErrNotFound, id)
}

type fakeZoneRepository struct {
	zones  []model.Zone
	nextID uint
}

func (f *fakeZoneRepository) GetByID(_ context.Context, id uint) (model.Zone, error) {
	for _, z := range f.zones {
		if z.ID == id {
			return z, nil
		}
	}
	return model.Zone{}, fmt.Errorf("%w: zone %d", dto.ErrNotFound, id)
}

func (f *fakeZoneRepository) FindActive(context.Context) ([]model.Zone, error) {
	active := make([]model.Zone, 0, len(f.zones))
	for _, z := range f.zones {
		if z.Active() {
			active = append(active, z)
		}
	}
	return active, nil
}

func (f *fakeZoneRepository) Create(_ context.Context, zone model.Zone) (model.Zone, error) {
	f.nextID++
	zone.ID = f.nextID
	f.zones = append(f.zones, zone)
	return zone, nil
}

type fakeCenterRepository struct {
	centers []model.Center
}

func (f *fakeCenterRepository) FindAll(context.Context) ([]model.Center, error) {
	return f.centers, nil
}

type fakeEvacuationRepository struct {
	mutex       sync.Mutex
	evacuations map[uint]model.Evacuation
	nextID      uint
}

func newFakeEvacuationRepository() *fakeEvacuationRepository {
	return &fakeEvacuationRepository{evacuations: make(map[uint]model.Evacuation)}
}

func (f *fakeEvacuationRepository) FindAll(context.Context) ([]model.Evacuation, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	all := make([]model.Evacuation, 0, len(f.evacuations))
	for _, ev := range f.evacuations {
		all = append(all, ev)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (f *fakeEvacuationRepository) FindByUser(_ context.Context, userID uint) (model.Evacuation, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for _, ev := range f.evacuations {
		if ev.UserID == userID {
			return ev, nil
		}
	}
	return model.Evacuation{}, fmt.Errorf("%w: no evacuation for user %d", dto.ErrNotFound, userID)
}

func (f *fakeEvacuationRepository) FindOpen(_ context.Context, userID, zoneID uint) (model.Evacuation, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for _, ev := range f.evacuations {
		if ev.UserID == userID && ev.StartZoneID != nil && *ev.StartZoneID == zoneID {
			return ev, nil
		}
	}
	return model.Evacuation{}, fmt.Errorf("%w: no open evacuation", dto.ErrNotFound)
}

func (f *fakeEvacuationRepository) FindByUserAndCenter(_ context.Context, userID, centerID uint) (model.Evacuation, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for _, ev := range f.evacuations {
		if ev.UserID == userID && ev.EndCenterID == centerID {
			return ev, nil
		}
	}
	return model.Evacuation{}, fmt.Errorf("%w: no open evacuation", dto.ErrNotFound)
}

func (f *fakeEvacuationRepository) CreateIfAbsent(_ context.Context, evacuation model.Evacuation) (model.Evacuation, bool, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for _, existing := range f.evacuations {
		sameZone := existing.StartZoneID != nil && evacuation.StartZoneID != nil &&
			*existing.StartZoneID == *evacuation.StartZoneID
		if existing.UserID == evacuation.UserID && sameZone {
			return existing, false, nil
		}
	}

	f.nextID++
	evacuation.ID = f.nextID
	f.evacuations[evacuation.ID] = evacuation
	return evacuation, true, nil
}

func (f *fakeEvacuationRepository) Delete(_ context.Context, id uint) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	delete(f.evacuations, id)
	return nil
}

type fakeIoTDeviceRepository struct {
	devices []model.IoTDevice
}

func (f *fakeIoTDeviceRepository) GetByMAC(_ context.Context, macAddr string) (model.IoTDevice, error) {
	for _, d := range f.devices {
		if d.MACAddr == macAddr {
			return d, nil
		}
	}
	return model.IoTDevice{}, fmt.Errorf("%w: device %s", dto.ErrNotFound, macAddr)
}

type fakeRepositories struct {
	userRepo       *fakeUserRepository
	zoneRepo       *fakeZoneRepository
	centerRepo     *fakeCenterRepository
	evacuationRepo *fakeEvacuationRepository
	deviceRepo     *fakeIoTDeviceRepository
}

func (f *fakeRepositories) User() repository.UserRepository             { return f.userRepo }
func (f *fakeRepositories) Zone() repository.ZoneRepository             { return f.zoneRepo }
func (f *fakeRepositories) Center() repository.CenterRepository         { return f.centerRepo }
func (f *fakeRepositories) Evacuation() repository.EvacuationRepository { return f.evacuationRepo }
func (f *fakeRepositories) IoTDevice() repository.IoTDeviceRepository   { return f.deviceRepo }

type fakeClients struct{}

func (fakeClients) RabbitMQClient() client.RabbitClient { return nil }
func (fakeClients) Redis() *redis.Client                { return nil }
func (fakeClients) Mailer() client.Mailer               { return nil }
func (fakeClients) Close()                              {}

type fakePublisher struct {
	jobs []notify.EmailJob
}

func (f *fakePublisher) Publish(_ context.Context, job notify.EmailJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}

// fakePeer stands in for a connected session.
type fakePeer struct {
	events []any
	userID *uint
}

func (p *fakePeer) Push(v any) error {
	p.events = append(p.events, v)
	return nil
}

func (p *fakePeer) BindUser(id uint) {
	p.userID = &id
}

func (p *fakePeer) lastEvent(t *testing.T) any {
	t.Helper()
	if len(p.events) == 0 {
		t.Fatal("no reply was pushed")
	}
	return p.events[len(p.events)-1]
}

type routerFixture struct {
	repos  *fakeRepositories
	router *Router
}

// newRouterFixture wires a router over one user at the origin, one active
// zone covering the origin, one center roughly 222 m east and one device.
func newRouterFixture() *routerFixture {
	deviceRadius := 750.0
	repos := &fakeRepositories{
		userRepo: &fakeUserRepository{users: []model.User{
			{ID: 1, Username: "olena", Email: "olena@example.com", Latitude: 10, Longitude: 10},
		}},
		zoneRepo: &fakeZoneRepository{zones: []model.Zone{
			{ID: 1, Name: "Chemical spill", StartedAt: time.Now().UTC(), Latitude: 0, Longitude: 0, Radius: 500},
		}, nextID: 1},
		centerRepo: &fakeCenterRepository{centers: []model.Center{
			{ID: 1, Name: "School shelter", Latitude: 0, Longitude: 0.002},
		}},
		evacuationRepo: newFakeEvacuationRepository(),
		deviceRepo: &fakeIoTDeviceRepository{devices: []model.IoTDevice{
			{ID: 1, MACAddr: "aa:bb:cc:dd:ee:ff", Latitude: 49.8, Longitude: 24.0},
			{ID: 2, MACAddr: "00:11:22:33:44:55", DefaultZoneRadius: &deviceRadius},
		}},
	}

	cfg := dto.Config{RepoTimeout: time.Second}
	services := service.NewServices(repos, cfg, fakeClients{}, &fakePublisher{})
	return &routerFixture{
		repos:  repos,
		router: NewRouter(services),
	}
}

func TestRouteRejectsMalformedFrame(t *testing.T) {
	f := newRouterFixture()
	peer := &fakePeer{}

	f.router.Route(context.Background(), peer, []byte(`{"type": "init", "data":`))

	assert.Equal(t, dto.ErrorReply{Error: "Invalid data format"}, peer.lastEvent(t))
}

func TestRouteRejectsMissingData(t *testing.T) {
	f := newRouterFixture()

	for _, raw := range []string{
		`{"type": "userLocationUpdate"}`,
		`{"type": "userLocationUpdate", "data": null}`,
	} {
		peer := &fakePeer{}
		f.router.Route(context.Background(), peer, []byte(raw))
		assert.Equal(t, dto.ErrorReply{Error: "Data is missing in the message"}, peer.lastEvent(t))
	}
}

func TestRouteRejectsUnknownType(t *testing.T) {
	f := newRouterFixture()
	peer := &fakePeer{}

	f.router.Route(context.Background(), peer, []byte(`{"type": "teleport", "data": {}}`))

	assert.Equal(t, dto.ErrorReply{Error: "Unrecognized message type"}, peer.lastEvent(t))
}

func TestLocationUpdateRejectsBadCoordinates(t *testing.T) {
	f := newRouterFixture()

	for _, raw := range []string{
		`{"type": "userLocationUpdate", "data": {"userId": 1, "latitude": "abc", "longitude": 3}}`,
		`{"type": "userLocationUpdate", "data": {"userId": 1, "longitude": 3}}`,
		`{"type": "userLocationUpdate", "data": {"userId": 1, "latitude": 3}}`,
	} {
		peer := &fakePeer{}
		f.router.Route(context.Background(), peer, []byte(raw))
		assert.Equal(t, dto.ErrorReply{Error: "Invalid latitude or longitude"}, peer.lastEvent(t))
	}

	// Nothing was persisted along the way.
	assert.Equal(t, 10.0, f.repos.userRepo.users[0].Latitude)
}

func TestLocationUpdateUnknownUser(t *testing.T) {
	f := newRouterFixture()
	peer := &fakePeer{}

	f.router.Route(context.Background(), peer, []byte(`{"type": "userLocationUpdate", "data": {"userId": 99, "latitude": 0, "longitude": 0}}`))

	assert.Equal(t, dto.ErrorReply{Error: "User not found"}, peer.lastEvent(t))
}

func TestLocationUpdateInsideZone(t *testing.T) {
	f := newRouterFixture()
	peer := &fakePeer{}

	f.router.Route(context.Background(), peer, []byte(`{"type": "userLocationUpdate", "data": {"userId": 1, "latitude": 0, "longitude": 0}}`))

	require.NotNil(t, peer.userID)
	assert.Equal(t, uint(1), *peer.userID)

	require.Len(t, peer.events, 2)
	warning, ok := peer.events[0].(dto.WarningEvent)
	require.True(t, ok)
	assert.Equal(t, dto.EventWarning, warning.Type)
	assert.Equal(t, dto.SuccessReply{Success: "User location updated successfully"}, peer.events[1])

	all, err := f.repos.evacuationRepo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLocationUpdateArrivalAtCenter(t *testing.T) {
	f := newRouterFixture()
	peer := &fakePeer{}

	// Enter the zone, then step next to the center.
	f.router.Route(context.Background(), peer, []byte(`{"type": "userLocationUpdate", "data": {"userId": 1, "latitude": 0, "longitude": 0}}`))
	f.router.Route(context.Background(), peer, []byte(`{"type": "userLocationUpdate", "data": {"userId": 1, "latitude": 0, "longitude": 0.0018}}`))

	all, err := f.repos.evacuationRepo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	proximity, ok := peer.events[len(peer.events)-2].(dto.ProximityEvent)
	require.True(t, ok)
	assert.Equal(t, dto.EventProximityToCenter, proximity.Type)
	assert.Equal(t, dto.SuccessReply{Success: "User location updated successfully"}, peer.lastEvent(t))
}

func TestInitEchoesDeviceRecord(t *testing.T) {
	f := newRouterFixture()
	peer := &fakePeer{}

	f.router.Route(context.Background(), peer, []byte(`{"type": "init", "data": {"MACADDR": "aa:bb:cc:dd:ee:ff"}}`))

	device, ok := peer.lastEvent(t).(model.IoTDevice)
	require.True(t, ok)
	assert.Equal(t, uint(1), device.ID)
}

func TestInitUnknownDevice(t *testing.T) {
	f := newRouterFixture()
	peer := &fakePeer{}

	f.router.Route(context.Background(), peer, []byte(`{"type": "init", "data": {"MACADDR": "ff:ff:ff:ff:ff:ff"}}`))

	assert.Equal(t, dto.ErrorReply{Error: "IoT device not found"}, peer.lastEvent(t))
}

func TestEmergencyAlertOpensZone(t *testing.T) {
	f := newRouterFixture()
	peer := &fakePeer{}

	f.router.Route(context.Background(), peer, []byte(`{"type": "emergencyAlert", "data": {"MACADDR": "aa:bb:cc:dd:ee:ff"}}`))

	zone, ok := peer.lastEvent(t).(model.Zone)
	require.True(t, ok)
	assert.Equal(t, "IoT created Zone", zone.Name)
	assert.Equal(t, 500.0, zone.Radius)
	assert.Equal(t, 49.8, zone.Latitude)
	assert.Len(t, f.repos.zoneRepo.zones, 2)
}

func TestEmergencyAlertUsesDeviceRadius(t *testing.T) {
	f := newRouterFixture()
	peer := &fakePeer{}

	f.router.Route(context.Background(), peer, []byte(`{"type": "emergencyAlert", "data": {"MACADDR": "00:11:22:33:44:55"}}`))

	zone, ok := peer.lastEvent(t).(model.Zone)
	require.True(t, ok)
	assert.Equal(t, 750.0, zone.Radius)
}

func TestEmergencyAlertUnknownDevice(t *testing.T) {
	f := newRouterFixture()
	peer := &fakePeer{}

	f.router.Route(context.Background(), peer, []byte(`{"type": "emergencyAlert", "data": {"MACADDR": "ff:ff:ff:ff:ff:ff"}}`))

	assert.Equal(t, dto.ErrorReply{Error: "IoT device not found"}, peer.lastEvent(t))
	assert.Len(t, f.repos.zoneRepo.zones, 1)
}
