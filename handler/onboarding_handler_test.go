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

func TestPricingOnboarding_Enterprise(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.backend.handle("POST /api/user/pricing-onboarding", http.StatusOK, `{
		"success": true,
		"user": {"id": 7, "email": "ada@example.com"},
		"billing": {"selected_plan": "enterprise", "billing_cycle": "monthly", "add_ons": []}
	}`)

	rec, _ := env.do(t, http.MethodPost, "/api/onboarding/pricing", token, map[string]interface{}{
		"selectedPlan": "enterprise",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	calls := env.backend.calls(http.MethodPost, "/api/user/pricing-onboarding")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]interface{}{
		"selectedPlan":        "enterprise",
		"billingCycle":        "monthly",
		"addOns":              []interface{}{},
		"onboardingCompleted": true,
	}, calls[0].Body)
	assert.Empty(t, env.backend.calls(http.MethodPost, "/api/user/complete-onboarding"))

	rec, resp := env.do(t, http.MethodGet, "/api/plan", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plan model.PlanResponse
	require.NoError(t, json.Unmarshal(resp.Data, &plan))
	assert.Equal(t, model.PlanEnterprise, plan.CurrentPlan)
}

func TestStandardOnboarding_WithAddOns(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.backend.handle("POST /api/user/complete-onboarding", http.StatusOK, `{
		"success": true,
		"user": {"id": 7, "billing": {"selected_plan": "free", "billing_cycle": "annual", "add_ons": ["coder_package"]}}
	}`)

	rec, _ := env.do(t, http.MethodPost, "/api/onboarding", token, map[string]interface{}{
		"selectedPlan": "free",
		"billingCycle": "annual",
		"addOns":       []string{catalog.AddOnCoderPackage},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	calls := env.backend.calls(http.MethodPost, "/api/user/complete-onboarding")
	require.Len(t, calls, 1)
	assert.Equal(t, []interface{}{"coder_package"}, calls[0].Body["addOns"])
	assert.Equal(t, true, calls[0].Body["onboardingCompleted"])
}

func TestOnboarding_Rejections(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec, resp := env.do(t, http.MethodPost, "/api/onboarding", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please select a plan", resp.Message)

	rec, _ = env.do(t, http.MethodPost, "/api/onboarding", token, map[string]interface{}{
		"selectedPlan": "builder",
		"addOns":       []string{catalog.AddOnCoderPackage},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, env.backend.calls(http.MethodPost, "/api/user/complete-onboarding"))
}

func TestOnboarding_BackendFormError(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.backend.handle("POST /api/user/pricing-onboarding", http.StatusOK, `{"success": false, "message": "Onboarding already completed"}`)

	rec, resp := env.do(t, http.MethodPost, "/api/onboarding/pricing", token, map[string]interface{}{
		"selectedPlan": "builder",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Onboarding already completed", resp.Message)
}
