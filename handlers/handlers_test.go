package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assethub/config"
	"assethub/handlers"
	"assethub/inventory"
	"assethub/lifecycle"
	"assethub/models"
	"assethub/routes"
	"assethub/store"
	"assethub/websocket"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	config.LoadConfig()

	stores := store.NewMemoryStores()
	ledger := inventory.NewLedger(stores.Assets)
	controller := lifecycle.NewController(ledger, stores.Accounts, stores.Requests, stores.Assignments)

	h := &handlers.Handler{
		Ledger:     ledger,
		Controller: controller,
		Accounts:   stores.Accounts,
		Hub:        websocket.NewHub(),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{srv}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (s *testServer) doList(t *testing.T, path, token string) (*http.Response, []map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (s *testServer) register(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	resp, decoded := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register failed: %v", decoded)
	token, _ := decoded["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRequestLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	hrToken := s.register(t, map[string]interface{}{
		"name": "Acme HR", "email": "hr@acme.test", "password": "hunter22",
		"role": models.RoleHR, "companyName": "Acme", "packageLimit": 3,
	})
	empToken := s.register(t, map[string]interface{}{
		"name": "Waldo Worker", "email": "worker@mail.test", "password": "hunter22",
		"role": models.RoleEmployee,
	})

	// HR creates a single-unit returnable asset.
	resp, asset := s.do(t, http.MethodPost, "/api/assets", hrToken, map[string]interface{}{
		"name": "MacBook Pro", "kind": models.KindReturnable, "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assetID, _ := asset["id"].(string)
	require.NotEmpty(t, assetID)
	assert.EqualValues(t, 1, asset["availableQuantity"])

	// Employees may not create assets.
	resp, _ = s.do(t, http.MethodPost, "/api/assets", empToken, map[string]interface{}{
		"name": "Rogue", "kind": models.KindReturnable, "quantity": 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Employee submits a request.
	resp, request := s.do(t, http.MethodPost, "/api/requests", empToken, map[string]interface{}{
		"assetId": assetID, "note": "for the new hire project",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	requestID, _ := request["id"].(string)
	assert.Equal(t, models.StatusPending, request["status"])

	// HR sees it in the inbox.
	resp, inbox := s.doList(t, "/api/requests?status=pending", hrToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, inbox, 1)

	// Approve: inventory drains, custody opens.
	resp, approved := s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/approve", requestID), hrToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StatusApproved, approved["status"])

	resp, got := s.do(t, http.MethodGet, "/api/assets/"+assetID, empToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, got["availableQuantity"])

	// Second approval of the same request is a business-rule failure.
	resp, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/approve", requestID), hrToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The employee now shows up in the HR's team.
	resp, team := s.doList(t, "/api/my-team", hrToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, team, 1)
	assert.Equal(t, "worker@mail.test", team[0]["email"])

	// Employee's own projection.
	resp, mine := s.doList(t, "/api/my-assets", empToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, mine, 1)
	assert.Equal(t, models.StatusApproved, mine[0]["status"])

	// Return closes the loop.
	resp, returned := s.do(t, http.MethodPost, "/api/return/"+requestID, empToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StatusReturned, returned["status"])

	resp, got = s.do(t, http.MethodGet, "/api/assets/"+assetID, empToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, got["availableQuantity"])
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/assets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/assets", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// An Upgrade header must not stand in for credentials on API routes.
	req, err := http.NewRequest(http.MethodGet, s.URL+"/api/assets", nil)
	require.NoError(t, err)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	s.register(t, map[string]interface{}{
		"name": "Waldo Worker", "email": "Worker@Mail.Test", "password": "hunter22",
		"role": models.RoleEmployee,
	})

	// Duplicate email is refused, case-insensitively.
	resp, _ := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "Impostor", "email": "worker@mail.test", "password": "hunter22",
		"role": models.RoleEmployee,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, decoded := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": "WORKER@mail.test", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decoded["token"])

	resp, _ = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": "worker@mail.test", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFeedAnnouncesSubmittedRequests(t *testing.T) {
	s := newTestServer(t)

	hrToken := s.register(t, map[string]interface{}{
		"name": "Acme HR", "email": "hr@acme.test", "password": "hunter22",
		"role": models.RoleHR, "companyName": "Acme", "packageLimit": 3,
	})
	empToken := s.register(t, map[string]interface{}{
		"name": "Waldo Worker", "email": "worker@mail.test", "password": "hunter22",
		"role": models.RoleEmployee,
	})

	_, asset := s.do(t, http.MethodPost, "/api/assets", hrToken, map[string]interface{}{
		"name": "MacBook Pro", "kind": models.KindReturnable, "quantity": 1,
	})
	assetID := asset["id"].(string)

	wsURL := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws?company=hr@acme.test"
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	// Give the server a beat to register the subscription.
	time.Sleep(50 * time.Millisecond)

	resp, _ := s.do(t, http.MethodPost, "/api/requests", empToken, map[string]interface{}{
		"assetId": assetID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var update websocket.RequestUpdate
	require.NoError(t, json.Unmarshal(frame, &update))
	assert.Equal(t, "REQUEST_SUBMITTED", update.Type)
	assert.Equal(t, "worker@mail.test", update.Actor)
}

func TestDeleteAssetConflict(t *testing.T) {
	s := newTestServer(t)

	hrToken := s.register(t, map[string]interface{}{
		"name": "Acme HR", "email": "hr@acme.test", "password": "hunter22",
		"role": models.RoleHR, "companyName": "Acme", "packageLimit": 3,
	})
	empToken := s.register(t, map[string]interface{}{
		"name": "Waldo Worker", "email": "worker@mail.test", "password": "hunter22",
		"role": models.RoleEmployee,
	})

	_, asset := s.do(t, http.MethodPost, "/api/assets", hrToken, map[string]interface{}{
		"name": "Projector", "kind": models.KindReturnable, "quantity": 1,
	})
	assetID := asset["id"].(string)

	_, request := s.do(t, http.MethodPost, "/api/requests", empToken, map[string]interface{}{
		"assetId": assetID,
	})
	requestID := request["id"].(string)

	resp, _ := s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/approve", requestID), hrToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/assets/"+assetID, hrToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/return/"+requestID, empToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/assets/"+assetID, hrToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
