package model

type AddOn struct {
	Type            string     `json:"type"`
	Name            string     `json:"name"`
	Price           int        `json:"price"`
	Quantity        int        `json:"quantity"`
	Description     string     `json:"description"`
	DocumentCredits int        `json:"documentCredits"`
	ImageCredits    int        `json:"imageCredits"`
	OnlyOn          []PlanTier `json:"onlyOn,omitempty"`   // empty means every tier
	Includes        []string   `json:"includes,omitempty"` // add-on types that come with this one
}

// AddOnOffer is an add-on as presented to a user on a given tier.
type AddOnOffer struct {
	AddOn
	Owned    bool `json:"owned"`
	Included bool `json:"included"`
}

type PurchaseAddOnRequest struct {
	PackageType string `json:"packageType" validate:"required"`
	ProjectID   ID     `json:"projectId"`
}

type CancelSubscriptionRequest struct {
	Confirm bool `json:"confirm"`
}

type CancelSubscriptionResponse struct {
	Message string   `json:"message"`
	Billing *Billing `json:"billing,omitempty"`
}

type BillingResponse struct {
	Billing Billing      `json:"billing"`
	Plan    Plan         `json:"plan"`
	AddOns  []AddOnOffer `json:"add_ons"`
}

type PurchaseResponse struct {
	Message string   `json:"message"`
	Billing *Billing `json:"billing,omitempty"`
}
