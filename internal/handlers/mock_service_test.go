package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"stove_automation"
	"stove_automation/internal/models"
	"stove_automation/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockScheduler struct {
	resp    stove_automation.SchedulerResponse
	last    *stove_automation.SchedulerResponse
	checked int
}

func (m *mockScheduler) Check(ctx context.Context) stove_automation.SchedulerResponse {
	m.checked++
	return m.resp
}
func (m *mockScheduler) LastResult() (stove_automation.SchedulerResponse, bool) {
	if m.last == nil {
		return stove_automation.SchedulerResponse{}, false
	}
	return *m.last, true
}

type mockMonitoring struct {
	mu        sync.Mutex
	state     models.StoveStateRecord
	err       error
	health    service.CronHealth
	healthErr error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.StoveStateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.err
}
func (m *mockMonitoring) CronHealth(ctx context.Context) (service.CronHealth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health, m.healthErr
}

// set swaps the state and error seen by concurrent readers.
func (m *mockMonitoring) set(state models.StoveStateRecord, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.err = err
}

type mockEventLog struct {
	resp      []models.Event
	summary   service.ActivitySummary
	err       error
	lastFrom  time.Time
	lastTo    time.Time
	lastType  string
	lastLimit int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.Event, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastLimit = f.Limit
	return m.resp, m.err
}

func (m *mockEventLog) Summary(ctx context.Context, from, to time.Time) (service.ActivitySummary, error) {
	m.lastFrom = from
	m.lastTo = to
	return m.summary, m.err
}

type mockMaintenance struct {
	rec        models.MaintenanceRecord
	statusErr  error
	confirmErr error
	confirmed  int
}

func (m *mockMaintenance) CanIgnite(ctx context.Context) (bool, error) {
	return !m.rec.NeedsCleaning, nil
}
func (m *mockMaintenance) TrackUsage(ctx context.Context, running bool, now time.Time) (models.MaintenanceRecord, int, error) {
	return m.rec, 0, nil
}
func (m *mockMaintenance) Status(ctx context.Context) (models.MaintenanceRecord, error) {
	return m.rec, m.statusErr
}
func (m *mockMaintenance) ConfirmCleaning(ctx context.Context) error {
	m.confirmed++
	if m.confirmErr != nil {
		return m.confirmErr
	}
	m.rec = models.MaintenanceRecord{TargetHours: m.rec.TargetHours}
	return nil
}

// ---- Shared Test Helpers ----

const testSecret = "s3cret"

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, testSecret)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func secretHeader(secret string) http.Header {
	h := http.Header{}
	if secret != "" {
		h.Set("Authorization", "Bearer "+secret)
	}
	return h
}

func withHeader(req *http.Request, hdr http.Header) *http.Request {
	for k, vv := range hdr {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
