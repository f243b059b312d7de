package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentalcare/booking-api/internal/config"
	appointmenth "github.com/dentalcare/booking-api/internal/handler/appointment"
	authh "github.com/dentalcare/booking-api/internal/handler/auth"
	"github.com/dentalcare/booking-api/internal/handler/health"
	patienth "github.com/dentalcare/booking-api/internal/handler/patient"
	prometheush "github.com/dentalcare/booking-api/internal/handler/prometheus"
	rosterh "github.com/dentalcare/booking-api/internal/handler/roster"
	"github.com/dentalcare/booking-api/internal/middleware"
	"github.com/dentalcare/booking-api/internal/repository/memory"
	"github.com/dentalcare/booking-api/internal/service/appointment"
	"github.com/dentalcare/booking-api/internal/service/auth"
	"github.com/dentalcare/booking-api/internal/service/event"
	"github.com/dentalcare/booking-api/internal/service/patient"
	"github.com/dentalcare/booking-api/internal/service/roster"
	"github.com/dentalcare/booking-api/internal/validation"
	jwtauth "github.com/dentalcare/booking-api/pkg/auth"
	"github.com/dentalcare/booking-api/pkg/metrics"
	"github.com/dentalcare/booking-api/pkg/security"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	events *event.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("test", reg)
	store := memory.NewDocumentStore()
	rec := &event.Recorder{}
	doctors := roster.New(config.DefaultDoctors)
	v := validation.New(validation.WithRoster(doctors))

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("111111")
	require.NoError(t, err)
	jwtMgr := jwtauth.NewJWTManager(config.JWTConfig{Secret: "a-test-secret-of-32-characters!!", Issuer: "dentalcare", TTL: time.Hour})
	authSvc := auth.NewService(hasher, hash, jwtMgr)

	appointmentSvc := appointment.NewService(store, v, rec, cache.New(time.Minute, time.Minute), m)
	patientSvc := patient.NewService(store, v, rec)

	r := NewRouter(middleware.NewAuthMiddleware(authSvc), Handlers{
		Health:      health.NewHandler(map[string]health.Pinger{"store": store}),
		Roster:      rosterh.NewHandler(doctors),
		Patient:     patienth.NewHandler(patientSvc),
		Auth:        authh.NewHandler(authSvc),
		Appointment: appointmenth.NewHandler(appointmentSvc),
		Metrics:     prometheush.New(reg),
	}, m, RouterConfig{
		Mode:       gin.TestMode,
		CORSConfig: middleware.DefaultCORSConfig(),
	})

	return &testServer{t: t, engine: r.Engine(), events: rec}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(s.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func registration() map[string]interface{} {
	return map[string]interface{}{
		"name":                   "Jane Doe",
		"email":                  "jane@example.com",
		"phone":                  "+14155550100",
		"birthDate":              "1990-04-12",
		"gender":                 "female",
		"address":                "12 Harbour Street",
		"occupation":             "Engineer",
		"emergencyContactName":   "John Doe",
		"emergencyContactNumber": "+14155550199",
		"primaryPhysician":       "Leila Cameron",
		"treatmentConsent":       true,
		"disclosureConsent":      true,
		"privacyConsent":         true,
	}
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(http.MethodGet, "/api/v1/doctors", "", nil)
	require.Equal(t, http.StatusOK, status)
	var doctors []string
	require.NoError(t, json.Unmarshal(env.Data, &doctors))
	assert.Contains(t, doctors, "Leila Cameron")

	status, env = s.do(http.MethodPost, "/api/v1/patients", "", map[string]string{
		"name": "Jane", "email": "jane@example.com", "phone": "+14155550100",
	})
	require.Equal(t, http.StatusCreated, status)
	var created struct {
		ID         string `json:"id"`
		Registered bool   `json:"registered"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)
	assert.False(t, created.Registered)

	status, _ = s.do(http.MethodPut, "/api/v1/patients/"+created.ID+"/register", "", registration())
	require.Equal(t, http.StatusOK, status)
	status, env = s.do(http.MethodPut, "/api/v1/patients/"+created.ID+"/register", "", registration())
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "error", env.Status)

	status, env = s.do(http.MethodPost, "/api/v1/appointments", "", map[string]string{
		"patientId":        created.ID,
		"primaryPhysician": "Leila Cameron",
		"schedule":         "not a date",
		"reason":           "x",
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	fields := map[string]bool{}
	for _, e := range env.Errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["schedule"])
	assert.True(t, fields["reason"])

	status, env = s.do(http.MethodPost, "/api/v1/appointments", "", map[string]string{
		"patientId":        created.ID,
		"primaryPhysician": "Leila Cameron",
		"schedule":         "2026-11-02T09:30:00Z",
		"reason":           "Annual cleaning",
	})
	require.Equal(t, http.StatusCreated, status)
	var apt struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &apt))
	assert.Equal(t, "pending", apt.Status)

	status, _ = s.do(http.MethodGet, "/api/v1/appointments/"+apt.ID, "", nil)
	assert.Equal(t, http.StatusOK, status)

	// Admin routes need a session.
	status, _ = s.do(http.MethodGet, "/api/v1/admin/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(http.MethodPost, "/api/v1/admin/session", "", map[string]string{"passkey": "000000"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = s.do(http.MethodPost, "/api/v1/admin/session", "", map[string]string{"passkey": "111111"})
	require.Equal(t, http.StatusOK, status)
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	token := session.Token

	status, env = s.do(http.MethodGet, "/api/v1/admin/appointments", token, nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		TotalCount   int `json:"totalCount"`
		PendingCount int `json:"pendingCount"`
		Documents    []struct {
			ID string `json:"id"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.TotalCount)
	assert.Equal(t, 1, list.PendingCount)
	require.Len(t, list.Documents, 1)

	cancel := map[string]interface{}{
		"type": "cancel",
		"appointment": map[string]string{
			"primaryPhysician": "Leila Cameron",
			"schedule":         "2026-11-02T09:30:00Z",
		},
	}
	status, env = s.do(http.MethodPut, "/api/v1/admin/appointments/"+apt.ID, token, cancel)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "cancellationReason", env.Errors[0].Field)

	cancel["appointment"].(map[string]string)["cancellationReason"] = "Clinic closed"
	status, env = s.do(http.MethodPut, "/api/v1/admin/appointments/"+apt.ID, token, cancel)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &apt))
	assert.Equal(t, "cancelled", apt.Status)

	status, env = s.do(http.MethodGet, "/api/v1/admin/appointments", token, nil)
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		TotalCount     int `json:"totalCount"`
		CancelledCount int `json:"cancelledCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.TotalCount)
	assert.Equal(t, 1, summary.CancelledCount)

	assert.Len(t, s.events.Events(), 3)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(http.MethodGet, "/api/v1/appointments/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "error", env.Status)

	status, _ = s.do(http.MethodGet, "/api/v1/patients/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(http.MethodPost, "/api/v1/patients", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(http.MethodPost, "/api/v1/patients", "", map[string]string{"name": "J", "email": "nope", "phone": "123"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Len(t, env.Errors, 3)

	status, _ = s.do(http.MethodPost, "/api/v1/appointments", "", map[string]string{
		"patientId":        "missing",
		"primaryPhysician": "Leila Cameron",
		"schedule":         "2026-11-02T09:30:00Z",
		"reason":           "Annual cleaning",
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(http.MethodGet, "/api/v1/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(http.MethodGet, "/api/v1/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}
