package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"stove_automation/internal/device"
	"stove_automation/internal/models"
	"stove_automation/internal/repository"
)

// ---- State store ----

// memStore is an in-memory repository.StateStore. Values go through a JSON
// round trip so readers see the same generic shapes the SQL store returns.
type memStore struct {
	mu     sync.Mutex
	data   map[string]any
	getErr map[string]error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]any{}, getErr: map[string]error{}}
}

func jsonValue(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return out
}

func (s *memStore) Get(_ context.Context, path string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.getErr[path]; err != nil {
		return nil, err
	}
	return s.data[path], nil
}

func (s *memStore) Set(_ context.Context, path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[path] = jsonValue(value)
	return nil
}

func (s *memStore) Update(_ context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	obj := map[string]any{}
	if cur, ok := s.data[path].(map[string]any); ok {
		for k, v := range cur {
			obj[k] = v
		}
	}
	for k, v := range fields {
		if v == nil {
			delete(obj, k)
			continue
		}
		obj[k] = jsonValue(v)
	}
	s.data[path] = obj
	return nil
}

func (s *memStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.data {
		if k == path || strings.HasPrefix(k, path+"/") {
			delete(s.data, k)
		}
	}
	return nil
}

func (s *memStore) List(_ context.Context, prefix string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]any{}
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix+"/") {
			out[k] = v
		}
	}
	return out, nil
}

func (s *memStore) seed(t *testing.T, path string, value any) {
	t.Helper()
	if err := s.Set(context.Background(), path, value); err != nil {
		t.Fatalf("seed %s: %v", path, err)
	}
}

func (s *memStore) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[path]
	return ok
}

func (s *memStore) decode(t *testing.T, path string, out any) bool {
	t.Helper()
	s.mu.Lock()
	raw := s.data[path]
	s.mu.Unlock()
	ok, err := repository.Decode(raw, out)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return ok
}

// ---- Event log ----

// fakeEventRepo is a minimal stub that satisfies the repository.EventRepo interface.
type fakeEventRepo struct {
	mu sync.Mutex

	// captured inputs
	gotCtx  context.Context
	gotFrom time.Time
	gotTo   time.Time
	gotType string

	appended    []models.Event
	deleteTypes []string
	deleteCuts  []time.Time

	// configured outputs
	events    []models.Event
	err       error
	appendErr error

	calls int
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotCtx = ctx
	f.gotFrom = from
	f.gotTo = to
	f.gotType = typ
	return f.events, f.err
}

func (f *fakeEventRepo) Append(_ context.Context, e models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, e)
	return nil
}

func (f *fakeEventRepo) DeleteBefore(_ context.Context, typ string, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteTypes = append(f.deleteTypes, typ)
	f.deleteCuts = append(f.deleteCuts, cutoff)
	return 3, nil
}

func (f *fakeEventRepo) ofType(typ string) []models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Event
	for _, e := range f.appended {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeEventRepo) analytics(name string) int {
	n := 0
	for _, e := range f.ofType(models.EventAnalytics) {
		if e.Description == name {
			n++
		}
	}
	return n
}

// ---- Device gateway ----

type statusReply struct {
	desc  string
	err   error
	panic bool
}

// fakeGateway replays status replies in order; the last one repeats.
type fakeGateway struct {
	mu sync.Mutex

	statuses   []statusReply
	fan, power int
	fanErr     error
	powerErr   error

	igniteErr   error
	ignitePanic bool
	shutdownErr error
	setPowerErr error
	setFanErr   error

	statusCalls int
	ignites     []int
	shutdowns   int
	powerSets   []int
	fanSets     []int
}

func (g *fakeGateway) GetStatus(context.Context) (device.Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	if len(g.statuses) == 0 {
		return device.Status{}, nil
	}
	idx := g.statusCalls - 1
	if idx >= len(g.statuses) {
		idx = len(g.statuses) - 1
	}
	r := g.statuses[idx]
	if r.panic {
		panic("status decoder exploded")
	}
	if r.err != nil {
		return device.Status{}, r.err
	}
	return device.Status{Description: r.desc}, nil
}

func (g *fakeGateway) GetFanLevel(context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fan, g.fanErr
}

func (g *fakeGateway) GetPowerLevel(context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.power, g.powerErr
}

func (g *fakeGateway) Ignite(_ context.Context, power int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ignitePanic {
		panic("ignite exploded")
	}
	g.ignites = append(g.ignites, power)
	return g.igniteErr
}

func (g *fakeGateway) Shutdown(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.shutdowns++
	return g.shutdownErr
}

func (g *fakeGateway) SetPowerLevel(_ context.Context, level int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.powerSets = append(g.powerSets, level)
	if g.setPowerErr != nil {
		return g.setPowerErr
	}
	g.power = level
	return nil
}

func (g *fakeGateway) SetFanLevel(_ context.Context, level int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fanSets = append(g.fanSets, level)
	if g.setFanErr != nil {
		return g.setFanErr
	}
	g.fan = level
	return nil
}

func (g *fakeGateway) setStatuses(replies ...statusReply) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses = replies
	g.statusCalls = 0
}

func (g *fakeGateway) snapshot() fakeGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fakeGateway{
		statusCalls: g.statusCalls,
		ignites:     append([]int(nil), g.ignites...),
		shutdowns:   g.shutdowns,
		powerSets:   append([]int(nil), g.powerSets...),
		fanSets:     append([]int(nil), g.fanSets...),
	}
}

func reply(desc string) statusReply { return statusReply{desc: desc} }

// ---- Notifier, thermostat, weather ----

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []models.Notification
	users   []string
	outcome models.NotifyOutcome
	err     error
}

func (n *fakeNotifier) Notify(_ context.Context, userID string, msg models.Notification) (models.NotifyOutcome, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return "", n.err
	}
	n.users = append(n.users, userID)
	n.sent = append(n.sent, msg)
	if n.outcome != "" {
		return n.outcome, nil
	}
	return models.NotifySent, nil
}

func (n *fakeNotifier) count(category string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.sent {
		if m.Category == category {
			c++
		}
	}
	return c
}

type fakeThermostat struct {
	mu          sync.Mutex
	status      models.ThermostatStatus
	calibrated  int
	statusCalls int
	syncs       []bool
}

func (f *fakeThermostat) HomeStatus(context.Context) (models.ThermostatStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.status, nil
}

func (f *fakeThermostat) CalibrateValves(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calibrated++
	return nil
}

func (f *fakeThermostat) SyncStoveState(_ context.Context, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs = append(f.syncs, on)
	return nil
}

type fakeWeather struct {
	mu    sync.Mutex
	calls int
	snap  models.WeatherSnapshot
}

func (f *fakeWeather) Current(context.Context) (models.WeatherSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snap, nil
}

func ptr(v float64) *float64 { return &v }
