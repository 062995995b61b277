package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tariffai/privacy-api/internal/api"
	"github.com/tariffai/privacy-api/internal/api/models"
	"github.com/tariffai/privacy-api/internal/auth"
	"github.com/tariffai/privacy-api/internal/dsr"
	"github.com/tariffai/privacy-api/internal/featureflags"
	"github.com/tariffai/privacy-api/internal/notify"
	"github.com/tariffai/privacy-api/internal/share"
	"github.com/tariffai/privacy-api/internal/userdata"
)

const testShareAPIKey = "test-share-api-key"

// testEnv bundles the router with the in-memory backends so tests can
// seed data and read state the API never exposes (verification codes).
type testEnv struct {
	router   http.Handler
	dsrRepo  *dsr.InMemoryRepository
	store    *userdata.InMemoryStore
	mailer   *notify.MemoryMailer
	jwt      *auth.JWTService
}

// testJWTService creates a JWT service for generating test tokens.
func testJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.tariff.ai",
		Audience:   "tariffai-privacy-api",
	})
}

func newTestEnv() *testEnv {
	logger := zerolog.New(io.Discard)

	flagService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: featureflags.NewInMemoryRepository(),
		Logger:     logger,
	})

	dsrRepo := dsr.NewInMemoryRepository()
	store := userdata.NewInMemoryStore()
	mailer := notify.NewMemoryMailer()

	dsrService := dsr.NewService(dsr.ServiceConfig{
		Repository: dsrRepo,
		Store:      store,
		Mailer:     mailer,
		Flags:      flagService,
		Logger:     logger,
	})

	shareService := share.NewService(share.ServiceConfig{
		Repository: share.NewInMemoryRepository(),
		Flags:      flagService,
		Logger:     logger,
		BaseURL:    "https://tariff.ai",
	})

	jwtService := testJWTService()

	router := api.NewRouter(api.RouterConfig{
		Version:            "test",
		BuildTime:          "2024-01-01T00:00:00Z",
		Logger:             logger,
		JWTService:         jwtService,
		DSRService:         dsrService,
		ShareService:       shareService,
		FeatureFlagService: flagService,
		ShareAPIKey:        testShareAPIKey,
	})

	return &testEnv{
		router:  router,
		dsrRepo: dsrRepo,
		store:   store,
		mailer:  mailer,
		jwt:     jwtService,
	}
}

// addAdminHeader adds a valid admin Bearer token to the request.
func (e *testEnv) addAdminHeader(t *testing.T, req *http.Request) {
	t.Helper()
	token, _, err := e.jwt.GenerateAdminToken("ops@tariff.ai")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
}

// submitRequest submits a data subject request through the API and returns
// its ID plus the verification code the requester would receive by email.
func (e *testEnv) submitRequest(t *testing.T, requestType string) (id, code string) {
	t.Helper()

	input := models.SubmitDataRequest{
		RequestType:    requestType,
		RequesterEmail: "requester@example.com",
		RequesterName:  "Test Requester",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.SubmitDataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RequestID)

	stored, err := e.dsrRepo.Get(context.Background(), resp.RequestID)
	require.NoError(t, err)

	return resp.RequestID, stored.VerificationCode
}

func TestRouter_HealthCheck(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.NotEmpty(t, health.Time)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SubmitRequest(t *testing.T) {
	env := newTestEnv()

	input := models.SubmitDataRequest{
		RequestType:    "access",
		RequesterEmail: "requester@example.com",
		RequesterName:  "Test Requester",
		RequestDetails: "Please send everything you hold on me.",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("Location"))

	var resp models.SubmitDataResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.RequestID)

	// The verification code travels by email, never in the API response.
	assert.NotContains(t, w.Body.String(), "verification_code")
	require.NotNil(t, env.mailer.LastSent())
	assert.Equal(t, "requester@example.com", env.mailer.LastSent().To)
}

func TestRouter_SubmitRequest_ValidationError(t *testing.T) {
	env := newTestEnv()

	// Missing requester_email and requester_name
	input := models.SubmitDataRequest{
		RequestType: "access",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.TraceID)
}

func TestRouter_VerifyRequest(t *testing.T) {
	env := newTestEnv()
	id, code := env.submitRequest(t, "access")

	input := models.VerifyDataRequest{
		RequestID:        id,
		VerificationCode: code,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.VerifyDataResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
}

func TestRouter_VerifyRequest_WrongCode(t *testing.T) {
	env := newTestEnv()
	id, _ := env.submitRequest(t, "access")

	input := models.VerifyDataRequest{
		RequestID:        id,
		VerificationCode: "WRONG1",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_AccessFulfilment(t *testing.T) {
	env := newTestEnv()

	env.store.AddAccount(userdata.Account{
		ID:    "acc_test123",
		Email: "requester@example.com",
		Name:  "Test Requester",
	})
	env.store.AddNewsletterSubscription(userdata.NewsletterSubscription{
		ID:    "nws_test123",
		Email: "requester@example.com",
	})

	id, code := env.submitRequest(t, "access")
	verify(t, env, id, code)

	input := models.FulfillDataRequest{
		Email:            "requester@example.com",
		RequestID:        id,
		VerificationCode: code,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests/access", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AccessDataResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	require.NotNil(t, resp.Data.Account)
	assert.Equal(t, "requester@example.com", resp.Data.Account.Email)
	assert.Len(t, resp.Data.NewsletterSubscriptions, 1)
}

func TestRouter_AccessFulfilment_CSV(t *testing.T) {
	env := newTestEnv()

	env.store.AddAccount(userdata.Account{
		ID:    "acc_test123",
		Email: "requester@example.com",
		Name:  "Test Requester",
	})

	id, code := env.submitRequest(t, "access")
	verify(t, env, id, code)

	input := models.FulfillDataRequest{
		Email:            "requester@example.com",
		RequestID:        id,
		VerificationCode: code,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests/access?format=csv", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "collection,record,field,value")
}

func TestRouter_ErasureFulfilment(t *testing.T) {
	env := newTestEnv()

	env.store.AddAccount(userdata.Account{
		ID:    "acc_test123",
		Email: "requester@example.com",
		Name:  "Test Requester",
	})
	env.store.AddNewsletterSubscription(userdata.NewsletterSubscription{
		ID:    "nws_test123",
		Email: "requester@example.com",
	})

	id, code := env.submitRequest(t, "erasure")
	verify(t, env, id, code)

	input := models.FulfillDataRequest{
		Email:            "requester@example.com",
		RequestID:        id,
		VerificationCode: code,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests/erasure", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ErasureDataResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.DeletionSummary)
	assert.Equal(t, 1, resp.DeletionSummary.DeletedRecords[dsr.CollectionNewsletterSubscriptions])
}

func TestRouter_ErasureFulfilment_WrongEmail(t *testing.T) {
	env := newTestEnv()
	id, code := env.submitRequest(t, "erasure")
	verify(t, env, id, code)

	input := models.FulfillDataRequest{
		Email:            "someone-else@example.com",
		RequestID:        id,
		VerificationCode: code,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests/erasure", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_IssueShareLink(t *testing.T) {
	env := newTestEnv()

	input := models.IssueShareRequest{
		ReportID:   "rpt_test123",
		HSCode:     "8471.30",
		ReportData: json.RawMessage(`{"duty_rate":"2.5%"}`),
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports/share", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testShareAPIKey)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.IssueShareResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Contains(t, resp.ShareURL, "https://tariff.ai/reports/shared?token=")
}

func TestRouter_IssueShareLink_MissingAPIKey(t *testing.T) {
	env := newTestEnv()

	input := models.IssueShareRequest{
		ReportID:   "rpt_test123",
		ReportData: json.RawMessage(`{"duty_rate":"2.5%"}`),
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports/share", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_LookupSharedReport(t *testing.T) {
	env := newTestEnv()

	input := models.IssueShareRequest{
		ReportID:   "rpt_test123",
		ReportData: json.RawMessage(`{"duty_rate":"2.5%"}`),
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports/share", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testShareAPIKey)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var issued models.IssueShareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issued))

	token := issued.ShareURL[len("https://tariff.ai/reports/shared?token="):]

	// Lookup needs no API key; the token is the credential.
	req = httptest.NewRequest(http.MethodGet, "/v1/reports/shared/"+token, http.NoBody)
	w = httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.SharedReportResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"duty_rate":"2.5%"}`, string(resp.Data))
}

func TestRouter_LookupSharedReport_NotFound(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/shared/nosuchtoken", http.NoBody)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_AdminListRequests(t *testing.T) {
	env := newTestEnv()
	env.submitRequest(t, "access")

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/privacy/requests", http.NoBody)
	env.addAdminHeader(t, req)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var list models.AdminDataRequestList
	err := json.Unmarshal(w.Body.Bytes(), &list)
	require.NoError(t, err)

	require.Len(t, list.Items, 1)
	assert.Equal(t, "requester@example.com", list.Items[0].RequesterEmail)
	assert.NotContains(t, w.Body.String(), "verification_code")
}

func TestRouter_AdminListRequests_Unauthorized(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/privacy/requests", http.NoBody)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_AdminGetRequest(t *testing.T) {
	env := newTestEnv()
	id, _ := env.submitRequest(t, "access")

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/privacy/requests/"+id, http.NoBody)
	env.addAdminHeader(t, req)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var item models.AdminDataRequest
	err := json.Unmarshal(w.Body.Bytes(), &item)
	require.NoError(t, err)

	assert.Equal(t, id, item.ID)
}

func TestRouter_AdminRejectRequest(t *testing.T) {
	env := newTestEnv()
	id, code := env.submitRequest(t, "erasure")
	verify(t, env, id, code)

	input := models.RejectDataRequest{Reason: "identity could not be established"}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/privacy/requests/"+id+"/reject", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.addAdminHeader(t, req)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	stored, err := env.dsrRepo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, dsr.StatusRejected, stored.RequestStatus)
}

func TestRouter_AdminFeatureFlags(t *testing.T) {
	env := newTestEnv()

	input := featureflags.FlagUpdateRequest{
		Updates: []featureflags.FlagUpdate{
			{Key: featureflags.FlagReadOnlyMode, Value: true},
		},
		Reason: "incident",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/feature-flags", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.addAdminHeader(t, req)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/feature-flags", http.NoBody)
	env.addAdminHeader(t, req)
	w = httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), featureflags.FlagReadOnlyMode)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// verify drives the verification endpoint for an already-submitted request.
func verify(t *testing.T, env *testEnv, id, code string) {
	t.Helper()

	input := models.VerifyDataRequest{
		RequestID:        id,
		VerificationCode: code,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
