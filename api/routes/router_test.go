package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/parkinglot-backend/api/controllers"
	"github.com/angelmondragon/parkinglot-backend/internal/reports"
	"github.com/angelmondragon/parkinglot-backend/internal/reservations"
	pkgauth "github.com/angelmondragon/parkinglot-backend/pkg/auth"
	"github.com/angelmondragon/parkinglot-backend/pkg/config"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
	"github.com/angelmondragon/parkinglot-backend/pkg/pagination"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "parking", ExpirationMinutes: 30},
	}
}

func newTestRouter(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()
	if deps.Config == nil {
		deps.Config = testConfig()
	}
	if deps.Logger == nil {
		deps.Logger = logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	}
	if deps.Sessions == nil {
		deps.Sessions = allowSessions{}
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.NewRegistry()
	}
	return NewRouter(deps)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Parking-Env"); got != "dev" {
		t.Fatalf("expected env header dev, got %q", got)
	}
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	router := newTestRouter(t, Dependencies{
		Pingers: map[string]controllers.Pinger{
			"db":    stubPinger{},
			"redis": stubPinger{err: errors.New("down")},
		},
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"redis":"down"`) {
		t.Fatalf("expected redis check in body, got %s", resp.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestLotsRequireToken(t *testing.T) {
	router := newTestRouter(t, Dependencies{Reports: &stubReports{}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/lots", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestLotsListedForUser(t *testing.T) {
	reportsSvc := &stubReports{}
	router := newTestRouter(t, Dependencies{Reports: reportsSvc})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lots?q=north", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if reportsSvc.lastQuery != "north" {
		t.Fatalf("expected search query north, got %q", reportsSvc.lastQuery)
	}
	if got := resp.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Fatalf("expected no-store cache header, got %q", got)
	}
}

func TestAdminRoutesRejectUsers(t *testing.T) {
	router := newTestRouter(t, Dependencies{Reports: &stubReports{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestAdminRoutesAllowAdmin(t *testing.T) {
	router := newTestRouter(t, Dependencies{Reports: &stubReports{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUserRoutesRejectAdmin(t *testing.T) {
	router := newTestRouter(t, Dependencies{Reports: &stubReports{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/active", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestBookSpotRoute(t *testing.T) {
	userID := uuid.New()
	lotID := uuid.New()
	resv := &stubReservations{}
	router := newTestRouter(t, Dependencies{Reservations: resv})

	body := `{"lot_id":"` + lotID.String() + `","vehicle_type":"car","unit_price":"10.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+userToken(t, userID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if resv.book.UserID != userID || resv.book.LotID != lotID {
		t.Fatalf("unexpected book input %+v", resv.book)
	}
	if resv.book.UnitPrice.StringFixed(2) != "10.00" {
		t.Fatalf("unexpected unit price %s", resv.book.UnitPrice)
	}
}

func TestReleaseRouteAsAdmin(t *testing.T) {
	resv := &stubReservations{}
	router := newTestRouter(t, Dependencies{Reservations: resv})

	reservationID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+reservationID.String()+"/release", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !resv.release.ActorIsAdmin || resv.release.ActorUserID != nil {
		t.Fatalf("expected admin release, got %+v", resv.release)
	}
	if resv.release.ReservationID != reservationID {
		t.Fatalf("unexpected reservation id %s", resv.release.ReservationID)
	}
}

func TestReleaseRouteAsOwner(t *testing.T) {
	userID := uuid.New()
	resv := &stubReservations{}
	router := newTestRouter(t, Dependencies{Reservations: resv})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+uuid.NewString()+"/release", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, userID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if resv.release.ActorIsAdmin || resv.release.ActorUserID == nil || *resv.release.ActorUserID != userID {
		t.Fatalf("expected owner release, got %+v", resv.release)
	}
}

func userToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: &userID,
		Role:   enums.PrincipalRoleUser,
	})
	if err != nil {
		t.Fatalf("mint user token: %v", err)
	}
	return token
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		Subject: "admin@example.com",
		Role:    enums.PrincipalRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}
	return token
}

type allowSessions struct{}

func (allowSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubReports struct {
	lastQuery string
}

func (s *stubReports) ListAvailableLots(_ context.Context, query string) ([]reports.AvailableLotDTO, error) {
	s.lastQuery = query
	return []reports.AvailableLotDTO{}, nil
}

func (s *stubReports) ListActiveBookings(context.Context, uuid.UUID) ([]reports.ActiveBookingDTO, error) {
	return []reports.ActiveBookingDTO{}, nil
}

func (s *stubReports) ListHistory(_ context.Context, _ uuid.UUID, params pagination.Params) (*pagination.Page[reports.HistoryEntryDTO], error) {
	return &pagination.Page[reports.HistoryEntryDTO]{}, nil
}

func (s *stubReports) OccupancySummary(context.Context) ([]reports.LotOccupancyDTO, error) {
	return []reports.LotOccupancyDTO{}, nil
}

func (s *stubReports) UsageSummary(context.Context, uuid.UUID) ([]reports.LotUsageDTO, error) {
	return []reports.LotUsageDTO{}, nil
}

func (s *stubReports) OccupiedSpotDetails(context.Context) ([]reports.OccupiedSpotDTO, error) {
	return []reports.OccupiedSpotDTO{}, nil
}

func (s *stubReports) ListUsers(context.Context) ([]reports.UserSummaryDTO, error) {
	return []reports.UserSummaryDTO{}, nil
}

type stubReservations struct {
	book    reservations.BookInput
	release reservations.ReleaseInput
}

func (s *stubReservations) Book(_ context.Context, input reservations.BookInput) (*reservations.BookResult, error) {
	s.book = input
	return &reservations.BookResult{RemainingCapacity: 4}, nil
}

func (s *stubReservations) Release(_ context.Context, input reservations.ReleaseInput) (*reservations.ReleaseResult, error) {
	s.release = input
	return &reservations.ReleaseResult{SpotReturned: true}, nil
}
