package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ttconnect/internal/handlers/testutils"

	"github.com/stretchr/testify/require"
)

func TestCreateConnectionRequestMissingSupplier(t *testing.T) {
	store := newMockStorage()
	h := newTestHandler(store)
	brandUser, _ := store.addBrandUser("b@b.com", "Acme")

	w := httptest.NewRecorder()
	h.CreateConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/request", `{}`, claimsFor(brandUser)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Supplier ID is required")

	w = httptest.NewRecorder()
	h.CreateConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/request", `{"supplierId":"nope"}`, claimsFor(brandUser)))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Supplier not found")
}

func TestCreateConnectionRequestDuplicatePair(t *testing.T) {
	store := newMockStorage()
	h := newTestHandler(store)
	brandUser, _ := store.addBrandUser("b@b.com", "Acme")
	_, sup := store.addSupplierUser("s@b.com", "Mill")

	body := fmt.Sprintf(`{"supplierId":%q}`, sup.ID)

	w := httptest.NewRecorder()
	h.CreateConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/request", body, claimsFor(brandUser)))
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.requests, 1)

	// A second request for the same pair is rejected whatever the state of
	// the first, declined included.
	for _, cr := range store.requests {
		cr.Status = "declined"
	}
	w = httptest.NewRecorder()
	h.CreateConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/request", body, claimsFor(brandUser)))
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "Connection request already exists")
	require.Contains(t, w.Body.String(), "declined")
	require.Len(t, store.requests, 1)
}

func TestListConnectionRequestsByRole(t *testing.T) {
	store := newMockStorage()
	h := newTestHandler(store)
	brandUser, _ := store.addBrandUser("b@b.com", "Acme")
	supplierUser, sup := store.addSupplierUser("s@b.com", "Mill")

	body := fmt.Sprintf(`{"supplierId":%q}`, sup.ID)
	w := httptest.NewRecorder()
	h.CreateConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/request", body, claimsFor(brandUser)))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.ListConnectionRequestsHandler(w, authedRequest(http.MethodGet,
		"/api/connections/request", "", claimsFor(brandUser)))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Mill")

	w = httptest.NewRecorder()
	h.ListConnectionRequestsHandler(w, authedRequest(http.MethodGet,
		"/api/connections/request", "", claimsFor(supplierUser)))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Acme")
}

func TestRespondConnectionRequestValidation(t *testing.T) {
	store := newMockStorage()
	h := newTestHandler(store)
	supplierUser, _ := store.addSupplierUser("s@b.com", "Mill")

	w := httptest.NewRecorder()
	h.RespondConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/accept", `{"connectionRequestId":"x","status":"maybe"}`, claimsFor(supplierUser)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `Status must be either "accepted" or "declined"`)

	w = httptest.NewRecorder()
	h.RespondConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/accept", `{"connectionRequestId":"x","status":"accepted"}`, claimsFor(supplierUser)))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondConnectionRequestForeignSupplier(t *testing.T) {
	store := newMockStorage()
	h := newTestHandler(store)
	brandUser, _ := store.addBrandUser("b@b.com", "Acme")
	_, sup := store.addSupplierUser("s@b.com", "Mill")
	otherUser, _ := store.addSupplierUser("o@b.com", "Other Mill")

	w := httptest.NewRecorder()
	h.CreateConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/request", fmt.Sprintf(`{"supplierId":%q}`, sup.ID), claimsFor(brandUser)))
	require.Equal(t, http.StatusCreated, w.Code)

	var requestID string
	for id := range store.requests {
		requestID = id
	}

	w = httptest.NewRecorder()
	h.RespondConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/accept",
		fmt.Sprintf(`{"connectionRequestId":%q,"status":"accepted"}`, requestID), claimsFor(otherUser)))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "pending", store.requests[requestID].Status)
	require.Empty(t, store.workspaces)
}

func TestAcceptCreatesSingleWorkspace(t *testing.T) {
	store := newMockStorage()
	h := newTestHandler(store)
	brandUser, brand := store.addBrandUser("b@b.com", "Acme")
	supplierUser, sup := store.addSupplierUser("s@b.com", "Mill")

	w := httptest.NewRecorder()
	h.CreateConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/request", fmt.Sprintf(`{"supplierId":%q}`, sup.ID), claimsFor(brandUser)))
	require.Equal(t, http.StatusCreated, w.Code)

	var requestID string
	for id := range store.requests {
		requestID = id
	}

	body := fmt.Sprintf(`{"connectionRequestId":%q,"status":"accepted"}`, requestID)
	w = httptest.NewRecorder()
	h.RespondConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/accept", body, claimsFor(supplierUser)))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Connection request accepted")

	require.Len(t, store.workspaces, 1)
	for _, ws := range store.workspaces {
		require.Equal(t, brand.ID, ws.BrandID)
		require.Equal(t, sup.ID, ws.SupplierID)
	}

	// A repeated accept must not mutate anything or mint a second workspace.
	w = httptest.NewRecorder()
	h.RespondConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/accept", body, claimsFor(supplierUser)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "already been processed")
	require.Len(t, store.workspaces, 1)
	require.Equal(t, "accepted", store.requests[requestID].Status)
}

func TestDeclineCreatesNoWorkspace(t *testing.T) {
	store := newMockStorage()
	h := newTestHandler(store)
	brandUser, _ := store.addBrandUser("b@b.com", "Acme")
	supplierUser, sup := store.addSupplierUser("s@b.com", "Mill")

	w := httptest.NewRecorder()
	h.CreateConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/request", fmt.Sprintf(`{"supplierId":%q}`, sup.ID), claimsFor(brandUser)))
	require.Equal(t, http.StatusCreated, w.Code)

	var requestID string
	for id := range store.requests {
		requestID = id
	}

	w = httptest.NewRecorder()
	h.RespondConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/accept",
		fmt.Sprintf(`{"connectionRequestId":%q,"status":"declined"}`, requestID), claimsFor(supplierUser)))
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, store.workspaces)
	require.Equal(t, "declined", store.requests[requestID].Status)
}

// End to end over the mock: connect, accept, then exchange a message in the
// resulting workspace.
func TestConnectionToMessagingFlow(t *testing.T) {
	store := newMockStorage()
	h := newTestHandler(store)
	brandUser, _ := store.addBrandUser("b@b.com", "Acme")
	supplierUser, sup := store.addSupplierUser("s@b.com", "Mill")

	w := httptest.NewRecorder()
	h.CreateConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/request", fmt.Sprintf(`{"supplierId":%q}`, sup.ID), claimsFor(brandUser)))
	require.Equal(t, http.StatusCreated, w.Code)

	var requestID string
	for id := range store.requests {
		requestID = id
	}

	w = httptest.NewRecorder()
	h.RespondConnectionRequestHandler(w, authedRequest(http.MethodPost,
		"/api/connections/accept",
		fmt.Sprintf(`{"connectionRequestId":%q,"status":"accepted"}`, requestID), claimsFor(supplierUser)))
	require.Equal(t, http.StatusOK, w.Code)

	var workspaceID string
	for id := range store.workspaces {
		workspaceID = id
	}

	req := authedRequest(http.MethodPost, "/api/workspace/"+workspaceID+"/messages",
		`{"content":"Hello Mill"}`, claimsFor(brandUser))
	req = testutils.WithChiURLParams(req, map[string]string{"workspaceId": workspaceID})
	w = httptest.NewRecorder()
	h.PostMessageHandler(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = authedRequest(http.MethodGet, "/api/workspace/"+workspaceID+"/messages", "", claimsFor(supplierUser))
	req = testutils.WithChiURLParams(req, map[string]string{"workspaceId": workspaceID})
	w = httptest.NewRecorder()
	h.GetMessagesHandler(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []struct {
			Content     string `json:"content"`
			SenderID    string `json:"sender_id"`
			SenderEmail string `json:"sender_email"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	require.Equal(t, "Hello Mill", resp.Messages[0].Content)
	require.Equal(t, brandUser.ID, resp.Messages[0].SenderID)
	require.Equal(t, "b@b.com", resp.Messages[0].SenderEmail)
}
