package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stove_automation"
	"stove_automation/internal/models"
	"stove_automation/internal/service"
)

func TestSchedulerCheckHandler(t *testing.T) {
	sched := &mockScheduler{resp: stove_automation.SchedulerResponse{
		Status:         stove_automation.StatusIgnited,
		Message:        "accesa per l'intervallo 18:00-22:00",
		ActiveSchedule: &models.Interval{Start: "18:00", End: "22:00", Power: 4, Fan: 3},
		Giorno:         "Lunedì",
		Ora:            "19:00",
	}}
	r := newTestRouter(&service.Service{Scheduler: sched})

	// Without the secret → 401 and no cycle
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cron/scheduler-check", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", w.Code)
	}
	if sched.checked != 0 {
		t.Fatalf("check must not run without the secret")
	}

	// With the secret → 200 and the response body
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/cron/scheduler-check?secret="+testSecret, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("check status=%d, body=%s", w.Code, w.Body.String())
	}
	var out stove_automation.SchedulerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Status != stove_automation.StatusIgnited || out.Giorno != "Lunedì" || out.Ora != "19:00" {
		t.Fatalf("unexpected response: %+v", out)
	}
	if out.ActiveSchedule == nil || out.ActiveSchedule.Power != 4 {
		t.Fatalf("active schedule missing: %+v", out)
	}
	if sched.checked != 1 {
		t.Fatalf("expected one check, got %d", sched.checked)
	}
}

func TestSchedulerCheckHandler_ErrorStatusIsStill200(t *testing.T) {
	sched := &mockScheduler{resp: stove_automation.SchedulerResponse{Status: stove_automation.StatusError, Message: "errore interno: boom"}}
	r := newTestRouter(&service.Service{Scheduler: sched})

	w := httptest.NewRecorder()
	req := withHeader(httptest.NewRequest(http.MethodGet, "/api/cron/scheduler-check", nil), http.Header{cronSecretHeader: {testSecret}})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out["status"] != stove_automation.StatusError {
		t.Fatalf("unexpected body: %v", out)
	}
	if _, present := out["activeSchedule"]; present {
		t.Fatalf("activeSchedule must be omitted: %v", out)
	}
}

func TestStoveHandlers_StateAndCron(t *testing.T) {
	lastCall := time.Date(2025, time.January, 6, 18, 55, 0, 0, time.UTC)
	mon := &mockMonitoring{
		state:  models.StoveStateRecord{Status: "WORK 1", PowerLevel: 4, FanLevel: 3, Source: models.SourceTelemetry},
		health: service.CronHealth{LastCall: lastCall, Age: "5m0s"},
	}
	sched := &mockScheduler{}
	s := &service.Service{Monitoring: mon, Scheduler: sched}
	r := newTestRouter(s)

	// GET state requires the secret → 401 without header
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stove/state", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", w.Code)
	}

	// With the secret → 200 and state body
	w = httptest.NewRecorder()
	req = withHeader(httptest.NewRequest(http.MethodGet, "/api/v1/stove/state", nil), secretHeader(testSecret))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("state status=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.StoveStateRecord
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.Status != "WORK 1" || st.PowerLevel != 4 {
		t.Fatalf("unexpected state: %+v", st)
	}

	// Cron health
	w = httptest.NewRecorder()
	req = withHeader(httptest.NewRequest(http.MethodGet, "/api/v1/cron/health", nil), secretHeader(testSecret))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d, body=%s", w.Code, w.Body.String())
	}
	var health service.CronHealth
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if !health.LastCall.Equal(lastCall) || health.Stale {
		t.Fatalf("unexpected health: %+v", health)
	}

	// No check has run yet → 404
	w = httptest.NewRecorder()
	req = withHeader(httptest.NewRequest(http.MethodGet, "/api/v1/cron/last-result", nil), secretHeader(testSecret))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any check, got %d", w.Code)
	}

	sched.last = &stove_automation.SchedulerResponse{Status: stove_automation.StatusNoSchedule, Giorno: "Lunedì", Ora: "23:00"}
	w = httptest.NewRecorder()
	req = withHeader(httptest.NewRequest(http.MethodGet, "/api/v1/cron/last-result", nil), secretHeader(testSecret))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("last-result status=%d, body=%s", w.Code, w.Body.String())
	}
	var last stove_automation.SchedulerResponse
	_ = json.Unmarshal(w.Body.Bytes(), &last)
	if last.Status != stove_automation.StatusNoSchedule {
		t.Fatalf("unexpected last result: %+v", last)
	}
}

func TestStoveHandlers_StateError(t *testing.T) {
	s := &service.Service{Monitoring: &mockMonitoring{err: errors.New("db down")}}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := withHeader(httptest.NewRequest(http.MethodGet, "/api/v1/stove/state", nil), secretHeader(testSecret))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var out map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out["error"] != errGetState {
		t.Fatalf("unexpected error body: %v", out)
	}
}

func TestMaintenanceHandlers(t *testing.T) {
	maint := &mockMaintenance{rec: models.MaintenanceRecord{CurrentHours: 51, TargetHours: 50, NeedsCleaning: true, LastNotificationLevel: 100}}
	r := newTestRouter(&service.Service{Maintenance: maint})

	w := httptest.NewRecorder()
	req := withHeader(httptest.NewRequest(http.MethodGet, "/api/v1/maintenance", nil), secretHeader(testSecret))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var rec models.MaintenanceRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !rec.NeedsCleaning || rec.CurrentHours != 51 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	// POST confirm-cleaning → 200, resets and includes the record
	w = httptest.NewRecorder()
	req = withHeader(httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/confirm-cleaning", nil), secretHeader(testSecret))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Status      string                   `json:"status"`
		Maintenance models.MaintenanceRecord `json:"maintenance"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Status != statusCleaned || out.Maintenance.NeedsCleaning || out.Maintenance.TargetHours != 50 {
		t.Fatalf("unexpected confirm response: %+v", out)
	}
	if maint.confirmed != 1 {
		t.Fatalf("ConfirmCleaning calls: want 1, got %d", maint.confirmed)
	}

	// Failure → 500
	maint.confirmErr = errors.New("db down")
	w = httptest.NewRecorder()
	req = withHeader(httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/confirm-cleaning", nil), secretHeader(testSecret))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on failure, got %d", w.Code)
	}
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
}
