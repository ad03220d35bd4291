package models

// ShippingAddress is the single saved address per user, replaced wholesale
// on every save. Validation happens in the controller via the validate tags;
// the address store persists whatever it is given.
type ShippingAddress struct {
	FullName   string `json:"full_name"   validate:"required,max=120"`
	Line1      string `json:"line1"       validate:"required,max=120"`
	Line2      string `json:"line2"       validate:"nullable,max=120"`
	City       string `json:"city"        validate:"required,max=80"`
	State      string `json:"state"       validate:"nullable,max=80"`
	PostalCode string `json:"postal_code" validate:"required,max=16"`
	Country    string `json:"country"     validate:"required,min=2,max=56"`
	Phone      string `json:"phone"       validate:"nullable,regex=^\\+?[0-9 ()-]+$"`
}
