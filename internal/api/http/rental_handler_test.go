package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyrent-backend/internal/domain"
	"skyrent-backend/internal/metrics"
	"skyrent-backend/internal/repository"
	"skyrent-backend/internal/repository/memory"
	"skyrent-backend/internal/service"
	"skyrent-backend/internal/utils"
)

const createBody = `{
	"aircraftId": "N172SP",
	"ownerId": "owner-1",
	"renterId": "renter-1",
	"hourlyRate": "145",
	"estimatedHours": "6",
	"startDate": "2026-06-01",
	"endDate": "2026-06-03"
}`

type testServer struct {
	handler  http.Handler
	metrics  *metrics.Metrics
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, repo repository.RentalRepository, health HealthCheck) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("test", reg)
	svc := service.NewRentalService(repo, utils.DefaultFeePolicy(), nil, m)
	return &testServer{handler: NewRouter(svc, m, reg, health), metrics: m, registry: reg}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeRental(t *testing.T, rec *httptest.ResponseRecorder) RentalResponse {
	t.Helper()
	var res RentalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var res ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res.Error
}

func TestRentalHandler_Quote(t *testing.T) {
	s := newTestServer(t, memory.NewRentalRepository(), nil)

	rec := s.do(t, http.MethodPost, "/api/v1/rentals/quote", `{"hourlyRate":"145.00","estimatedHours":"6"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res PricingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, PricingResponse{
		HourlyRate:        "145.00",
		EstimatedHours:    "6.00",
		BaseCost:          "870.00",
		SalesTax:          "71.78",
		PlatformFeeRenter: "65.25",
		PlatformFeeOwner:  "65.25",
		Subtotal:          "1007.03",
		ProcessingFee:     "30.21",
		TotalCostRenter:   "1037.24",
		OwnerPayout:       "804.75",
	}, res)

	rec = s.do(t, http.MethodPost, "/api/v1/rentals/quote", `{"hourlyRate":"0","estimatedHours":"6"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRentalHandler_QuoteRejectsThreeDecimalInputs(t *testing.T) {
	s := newTestServer(t, memory.NewRentalRepository(), nil)

	rec := s.do(t, http.MethodPost, "/api/v1/rentals/quote", `{"hourlyRate":"145.005","estimatedHours":"6"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, decodeError(t, rec), "two decimal places")

	rec = s.do(t, http.MethodPost, "/api/v1/rentals/quote", `{"hourlyRate":"145","estimatedHours":"6.125"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestRentalHandler_CreateAndGet(t *testing.T) {
	s := newTestServer(t, memory.NewRentalRepository(), nil)

	rec := s.do(t, http.MethodPost, "/api/v1/rentals", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeRental(t, rec)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/v1/rentals/"+created.ID, rec.Header().Get("Location"))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "2026-06-01", created.StartDate)
	assert.Equal(t, "1037.24", created.TotalCostRenter)
	assert.Equal(t, "804.75", created.OwnerPayout)
	assert.Nil(t, created.ActualHours)

	rec = s.do(t, http.MethodGet, "/api/v1/rentals/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decodeRental(t, rec))

	// one series per route, method and status
	assert.Equal(t, 2, testutil.CollectAndCount(s.metrics.RequestDuration))
}

func TestRentalHandler_CreateInvalid(t *testing.T) {
	s := newTestServer(t, memory.NewRentalRepository(), nil)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"Malformed JSON", `{"aircraftId":`, "malformed request body"},
		{"Unknown field", `{"tailNumber":"N1"}`, "malformed request body"},
		{"Bad date", strings.Replace(createBody, "2026-06-01", "06/01/2026", 1), "invalid date format"},
		{"End before start", strings.Replace(createBody, "2026-06-03", "2026-05-01", 1), "end date must not be before start date"},
		{"Zero hours", strings.Replace(createBody, `"estimatedHours": "6"`, `"estimatedHours": "0"`, 1), "hours must be greater than zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/rentals", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeError(t, rec), tt.message)
		})
	}
}

func TestRentalHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t, memory.NewRentalRepository(), nil)

	rec := s.do(t, http.MethodPost, "/api/v1/rentals", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeRental(t, rec).ID
	base := "/api/v1/rentals/" + id

	rec = s.do(t, http.MethodPost, base+"/activate", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decodeError(t, rec), "invalid rental status transition")

	rec = s.do(t, http.MethodPost, base+"/approve", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", decodeRental(t, rec).Status)

	rec = s.do(t, http.MethodPost, base+"/pay", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeRental(t, rec).IsPaid)

	rec = s.do(t, http.MethodPost, base+"/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "active", decodeRental(t, rec).Status)

	rec = s.do(t, http.MethodPost, base+"/complete", `{"actualHours":"5.5"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	completed := decodeRental(t, rec)
	assert.Equal(t, "completed", completed.Status)
	require.NotNil(t, completed.ActualHours)
	assert.Equal(t, "5.50", *completed.ActualHours)

	rec = s.do(t, http.MethodPatch, base, `{"payoutCompleted":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeRental(t, rec).PayoutCompleted)

	rec = s.do(t, http.MethodPatch, base, `{"payoutCompleted":false}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, base+"/verify", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var verify VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verify))
	assert.True(t, verify.Consistent)
	assert.Empty(t, verify.Mismatch)
}

func TestRentalHandler_Decline(t *testing.T) {
	s := newTestServer(t, memory.NewRentalRepository(), nil)

	rec := s.do(t, http.MethodPost, "/api/v1/rentals", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeRental(t, rec).ID

	rec = s.do(t, http.MethodPost, "/api/v1/rentals/"+id+"/decline", `{"reason":"annual inspection"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	declined := decodeRental(t, rec)
	assert.Equal(t, "cancelled", declined.Status)
	assert.Equal(t, "annual inspection", declined.CancellationReason)

	rec = s.do(t, http.MethodPost, "/api/v1/rentals/"+id+"/approve", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRentalHandler_ListRentals(t *testing.T) {
	s := newTestServer(t, memory.NewRentalRepository(), nil)

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/api/v1/rentals", createBody)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/owners/owner-1/rentals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rentals []RentalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rentals))
	assert.Len(t, rentals, 2)

	rec = s.do(t, http.MethodGet, "/api/v1/renters/renter-1/rentals?status=approved", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/renters/renter-1/rentals?status=flying", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRentalHandler_NotFound(t *testing.T) {
	s := newTestServer(t, memory.NewRentalRepository(), nil)

	rec := s.do(t, http.MethodGet, "/api/v1/rentals/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "rental not found", decodeError(t, rec))
}

type failingRepo struct {
	repository.RentalRepository
}

func (failingRepo) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	return nil, errors.New("pq: connection refused")
}

func TestRentalHandler_InternalErrorHidesDetails(t *testing.T) {
	s := newTestServer(t, failingRepo{}, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/rentals/r-1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeError(t, rec))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	healthy := newTestServer(t, memory.NewRentalRepository(), func(ctx context.Context) error { return nil })
	rec := healthy.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := newTestServer(t, memory.NewRentalRepository(), func(ctx context.Context) error { return errors.New("timeout") })
	rec = down.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = healthy.do(t, http.MethodPost, "/api/v1/rentals", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = healthy.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_rentals_requested_total 1")
	assert.Contains(t, rec.Body.String(), `route="/api/v1/rentals"`)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrInvalidDateRange, http.StatusBadRequest},
		{domain.ErrInvalidHours, http.StatusBadRequest},
		{domain.ErrOverflow, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.ErrVersionConflict, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}

func TestMapDomainRentalToResponse_Timestamps(t *testing.T) {
	ts := time.Date(2026, 5, 1, 9, 30, 0, 0, time.FixedZone("CDT", -5*3600))
	res := MapDomainRentalToResponse(&domain.Rental{ID: "r-1", CreatedAt: ts, UpdatedAt: ts})
	assert.Equal(t, "2026-05-01T14:30:00Z", res.CreatedAt)
	assert.Equal(t, "0.00", res.BaseCost)
}
