package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/model"
	"github.com/evacgrid/backend/internal/notify"
)

func testConfig() dto.Config {
	return dto.Config{
		RepoTimeout:    time.Second,
		MailMaxRetries: 1,
		MailRetryDelay: time.Millisecond,
	}
}

type fakeUserRepository struct {
	users []model.User
	err   error
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
	return f.users, f.err
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
	err    error
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
	if f.err != nil {
		return nil, f.err
	}
	active := make([]model.Zone, 0, len(f.zones))
	for _, z := range f.zones {
		if z.Active() {
			active = append(active, z)
		}
	}
	return active, nil
}

func (f *fakeZoneRepository) Create(_ context.Context, zone model.Zone) (model.Zone, error) {
	if f.err != nil {
		return model.Zone{}, f.err
	}
	f.nextID++
	zone.ID = f.nextID
	f.zones = append(f.zones, zone)
	return zone, nil
}

type fakeCenterRepository struct {
	centers []model.Center
	err     error
}

func (f *fakeCenterRepository) FindAll(context.Context) ([]model.Center, error) {
	return f.centers, f.err
}

type fakeEvacuationRepository struct {
	mutex       sync.Mutex
	evacuations map[uint]model.Evacuation
	nextID      uint

	// createErr makes CreateIfAbsent fail; with createErrUserID set it fails
	// for that user only.
	createErr       error
	createErrUserID uint
}

func newFakeEvacuationRepository() *fakeEvacuationRepository {
	return &fakeEvacuationRepository{
		evacuations: make(map[uint]model.Evacuation),
	}
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

	if f.createErr != nil && (f.createErrUserID == 0 || f.createErrUserID == evacuation.UserID) {
		return model.Evacuation{}, false, f.createErr
	}

	for _, existing := range f.evacuations {
		sameZone := existing.StartZoneID != nil && evacuation.StartZoneID != nil &&
			*existing.StartZoneID == *evacuation.StartZoneID
		if existing.UserID == evacuation.UserID && sameZone {
			return existing, false, nil
		}
	}

	f.nextID++
	evacuation.ID = f.nextID
	evacuation.CreatedAt = time.Now().UTC()
	f.evacuations[evacuation.ID] = evacuation
	return evacuation, true, nil
}

func (f *fakeEvacuationRepository) Delete(_ context.Context, id uint) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	delete(f.evacuations, id)
	return nil
}

type fakePublisher struct {
	jobs []notify.EmailJob
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, job notify.EmailJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

// pushRecorder collects everything pushed toward one client.
type pushRecorder struct {
	events []any
	err    error
}

func (p *pushRecorder) Push(v any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, v)
	return nil
}
