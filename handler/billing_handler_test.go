package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/notblessy/studio-core/catalog"
	"github.com/notblessy/studio-core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBilling(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec, resp := env.do(t, http.MethodGet, "/api/billing", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var billing model.BillingResponse
	require.NoError(t, json.Unmarshal(resp.Data, &billing))
	assert.Equal(t, model.PlanBuilder, billing.Billing.SelectedPlan)
	assert.Equal(t, 16, billing.Plan.Documents)
	for _, offer := range billing.AddOns {
		assert.NotEqual(t, catalog.AddOnCoderPackage, offer.Type)
	}

	// served from the session cache
	assert.Len(t, env.backend.calls(http.MethodGet, "/api/user/profile"), 1)
}

func TestPurchaseAddOn_RequiresProject(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec, resp := env.do(t, http.MethodPost, "/api/billing/purchase", token, map[string]string{
		"packageType": catalog.AddOnDocumentPack,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please select a project", resp.Message)

	rec, _ = env.do(t, http.MethodPost, "/api/billing/purchase", token, map[string]string{
		"packageType": "mystery_box",
		"projectId":   "p1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, env.backend.calls(http.MethodPost, "/api/user/purchase-addon"))
}

func TestPurchaseAddOn_Success(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.backend.handle("POST /api/user/purchase-addon", http.StatusOK, `{"success": true, "message": "Document pack added"}`)

	env.backend.handle("GET /api/user/profile", http.StatusOK, `{
		"success": true,
		"user": {"id": 7, "email": "ada@example.com", "billing": {"selected_plan": "builder", "billing_cycle": "monthly", "add_ons": ["document_pack"], "document_credits": 5}}
	}`)

	rec, resp := env.do(t, http.MethodPost, "/api/billing/purchase", token, map[string]interface{}{
		"packageType": catalog.AddOnDocumentPack,
		"projectId":   12,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Document pack added", resp.Message)

	var purchase model.PurchaseResponse
	require.NoError(t, json.Unmarshal(resp.Data, &purchase))
	require.NotNil(t, purchase.Billing)
	assert.Equal(t, 5, purchase.Billing.DocumentCredits)

	calls := env.backend.calls(http.MethodPost, "/api/user/purchase-addon")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]interface{}{"packageType": "document_pack", "projectId": "12"}, calls[0].Body)

	// cached profile now reflects the purchase
	rec, resp = env.do(t, http.MethodGet, "/api/billing", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var billing model.BillingResponse
	require.NoError(t, json.Unmarshal(resp.Data, &billing))
	assert.Equal(t, []string{"document_pack"}, billing.Billing.AddOns)
}

func TestPurchaseAddOn_BackendRefusal(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.backend.handle("POST /api/user/purchase-addon", http.StatusOK, `{"success": false, "message": "Payment method declined"}`)

	rec, resp := env.do(t, http.MethodPost, "/api/billing/purchase", token, map[string]string{
		"packageType": catalog.AddOnImagePack,
		"projectId":   "p1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payment method declined", resp.Message)
}

func TestPurchaseAddOn_OneInFlightPerSession(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	env.backend.handleFunc("POST /api/user/purchase-addon", func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-release
		_, _ = w.Write([]byte(`{"success": true, "message": "ok"}`))
	})

	body := map[string]string{"packageType": catalog.AddOnImagePack, "projectId": "p1"}

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	firstReq := httptest.NewRequest(http.MethodPost, "/api/billing/purchase", bytes.NewReader(raw))
	firstReq.Header.Set("Content-Type", "application/json")
	firstReq.Header.Set("Authorization", "Bearer "+token)
	first := httptest.NewRecorder()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		env.e.ServeHTTP(first, firstReq)
	}()

	<-started
	rec, resp := env.do(t, http.MethodPost, "/api/billing/purchase", token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "a purchase is already in progress", resp.Message)

	close(release)
	wg.Wait()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Len(t, env.backend.calls(http.MethodPost, "/api/user/purchase-addon"), 1)

	// lock released once the first purchase finished
	rec, _ = env.do(t, http.MethodPost, "/api/billing/purchase", token, body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCancelSubscription(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.backend.handle("PUT /api/user/cancel-subscription", http.StatusOK, `{
		"success": true,
		"message": "Subscription cancelled",
		"billing": {"selected_plan": "free", "billing_cycle": "monthly", "add_ons": []}
	}`)

	rec, resp := env.do(t, http.MethodPost, "/api/billing/cancel", token, map[string]bool{"confirm": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cancellation must be confirmed", resp.Message)
	assert.Empty(t, env.backend.calls(http.MethodPut, "/api/user/cancel-subscription"))

	rec, resp = env.do(t, http.MethodPost, "/api/billing/cancel", token, map[string]bool{"confirm": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Subscription cancelled", resp.Message)

	rec, resp = env.do(t, http.MethodGet, "/api/billing", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var billing model.BillingResponse
	require.NoError(t, json.Unmarshal(resp.Data, &billing))
	assert.Equal(t, model.PlanFree, billing.Billing.SelectedPlan)
	assert.Len(t, env.backend.calls(http.MethodGet, "/api/user/profile"), 1)
}
