package model

import "time"

type Billing struct {
	SelectedPlan    PlanTier     `json:"selected_plan"`
	BillingCycle    BillingCycle `json:"billing_cycle"`
	AddOns          []string     `json:"add_ons"`
	DocumentCredits int          `json:"document_credits"`
	ImageCredits    int          `json:"image_credits"`
}

// Plan returns the selected tier, falling back to free when the backend sent none.
func (b Billing) Plan() PlanTier {
	if b.SelectedPlan.Valid() {
		return b.SelectedPlan
	}
	return PlanFree
}

type User struct {
	ID        ID         `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Company   string     `json:"company"`
	Address   string     `json:"address"`
	City      string     `json:"city"`
	State     string     `json:"state"`
	Avatar    string     `json:"avatar,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Billing   Billing    `json:"billing"`
}

// UpdateProfileRequest carries the fields of a partial profile update.
// Nil fields are left out of the upstream request.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty"`
	Company   *string `json:"company,omitempty"`
	Address   *string `json:"address,omitempty"`
	City      *string `json:"city,omitempty"`
	State     *string `json:"state,omitempty"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// Empty reports whether the request carries no field at all.
func (r UpdateProfileRequest) Empty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Email == nil && r.Phone == nil &&
		r.Company == nil && r.Address == nil && r.City == nil && r.State == nil && r.Avatar == nil
}

type CreateSessionRequest struct {
	Token string `json:"token" validate:"required"`
}

type SessionResponse struct {
	Token string `json:"token"`
	Type  string `json:"type"`
	User  User   `json:"user"`
}
