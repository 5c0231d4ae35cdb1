package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/notblessy/studio-core/catalog"
	"github.com/notblessy/studio-core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlan(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec, resp := env.do(t, http.MethodGet, "/api/plan", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan model.PlanResponse
	require.NoError(t, json.Unmarshal(resp.Data, &plan))
	assert.Equal(t, model.PlanBuilder, plan.CurrentPlan)
	assert.Equal(t, model.CycleMonthly, plan.BillingCycle)
	assert.Len(t, plan.Plans, 3)
	assert.Equal(t, []model.PlanTier{model.PlanFree}, plan.Downgrades)
}

func TestUpdatePlan_DowngradeNeedsConfirmation(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.backend.handle("PUT /api/user/plan", http.StatusOK, `{
		"success": true,
		"billing": {"selected_plan": "free", "billing_cycle": "monthly", "add_ons": []}
	}`)

	rec, resp := env.do(t, http.MethodPut, "/api/plan", token, map[string]interface{}{
		"selectedPlan": "free",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)

	var confirm model.DowngradeConfirmation
	require.NoError(t, json.Unmarshal(resp.Data, &confirm))
	assert.True(t, confirm.RequiresConfirmation)
	assert.Equal(t, model.PlanBuilder, confirm.CurrentPlan)
	assert.Equal(t, catalog.DowngradeWarning, confirm.Warning)
	assert.Empty(t, env.backend.calls(http.MethodPut, "/api/user/plan"))

	rec, _ = env.do(t, http.MethodPut, "/api/plan", token, map[string]interface{}{
		"selectedPlan":     "free",
		"confirmDowngrade": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	calls := env.backend.calls(http.MethodPut, "/api/user/plan")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]interface{}{"selectedPlan": "free", "billingCycle": "monthly"}, calls[0].Body)

	rec, resp = env.do(t, http.MethodGet, "/api/plan", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plan model.PlanResponse
	require.NoError(t, json.Unmarshal(resp.Data, &plan))
	assert.Equal(t, model.PlanFree, plan.CurrentPlan)
}

func TestUpdatePlan_UpgradeGoesStraightThrough(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.backend.handle("PUT /api/user/plan", http.StatusOK, `{"success": true}`)

	rec, resp := env.do(t, http.MethodPut, "/api/plan", token, map[string]interface{}{
		"selectedPlan": "enterprise",
		"billingCycle": "annual",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var billing model.Billing
	require.NoError(t, json.Unmarshal(resp.Data, &billing))
	assert.Equal(t, model.PlanEnterprise, billing.SelectedPlan)
	assert.Equal(t, model.CycleAnnual, billing.BillingCycle)

	calls := env.backend.calls(http.MethodPut, "/api/user/plan")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]interface{}{"selectedPlan": "enterprise", "billingCycle": "annual"}, calls[0].Body)
}

func TestUpdatePlan_FreeUserNeverAsked(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("GET /api/user/profile", http.StatusOK, `{
		"success": true,
		"user": {"id": 8, "billing": {"selected_plan": "free", "billing_cycle": "monthly"}}
	}`)
	env.backend.handle("PUT /api/user/plan", http.StatusOK, `{"success": true}`)
	token := env.login(t)

	rec, _ := env.do(t, http.MethodPut, "/api/plan", token, map[string]interface{}{"selectedPlan": "free"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdatePlan_Invalid(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec, _ := env.do(t, http.MethodPut, "/api/plan", token, map[string]interface{}{"selectedPlan": "unlimited"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPut, "/api/plan", token, map[string]interface{}{"selectedPlan": "builder", "billingCycle": "weekly"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.backend.calls(http.MethodPut, "/api/user/plan"))
}
