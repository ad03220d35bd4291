package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type addressInput struct {
	FullName   string `json:"full_name"   validate:"required,max=120"`
	Line1      string `json:"line1"       validate:"required"`
	Line2      string `json:"line2"       validate:"nullable,max=120"`
	City       string `json:"city"        validate:"required"`
	PostalCode string `json:"postal_code" validate:"required,max=16"`
	Country    string `json:"country"     validate:"required,min=2"`
	Phone      string `json:"phone"       validate:"nullable,regex=^\\+?[0-9 ]+$"`
}

func TestStructPassesOnValidInput(t *testing.T) {
	errs := Struct(addressInput{
		FullName:   "Ada Lovelace",
		Line1:      "12 Analytical Way",
		City:       "London",
		PostalCode: "N1 9GU",
		Country:    "GB",
		Phone:      "+44 20 1234",
	})
	assert.False(t, HasErrors(errs), "unexpected errors: %v", errs)
}

func TestStructRequired(t *testing.T) {
	errs := Struct(addressInput{Line1: "x", City: "x", PostalCode: "x", Country: "GB"})
	assert.Equal(t, "The full_name field is required.", errs["full_name"])

	// Whitespace-only counts as empty.
	errs = Struct(addressInput{FullName: "   ", Line1: "x", City: "x", PostalCode: "x", Country: "GB"})
	assert.Contains(t, errs, "full_name")
}

func TestStructNullableSkipsRulesWhenEmpty(t *testing.T) {
	errs := Struct(addressInput{
		FullName: "Ada", Line1: "x", City: "x", PostalCode: "x", Country: "GB",
	})
	assert.NotContains(t, errs, "line2")
	assert.NotContains(t, errs, "phone")
}

func TestStructRegex(t *testing.T) {
	in := addressInput{
		FullName: "Ada", Line1: "x", City: "x", PostalCode: "x", Country: "GB",
		Phone: "not-a-phone",
	}
	errs := Struct(in)
	assert.Equal(t, "The phone format is invalid.", errs["phone"])
}

func TestStructEmailAndBounds(t *testing.T) {
	type login struct {
		Email    string `json:"email"    validate:"required,email"`
		Password string `json:"password" validate:"required,min=1"`
	}

	errs := Struct(login{Email: "nope", Password: "p"})
	assert.Equal(t, "The email must be a valid email address.", errs["email"])

	errs = Struct(login{Email: "a@x.com", Password: "p"})
	assert.False(t, HasErrors(errs))
}

func TestStructNumericRules(t *testing.T) {
	type item struct {
		Quantity int     `json:"quantity" validate:"required,integer,gte=1"`
		Price    float64 `json:"price"    validate:"required,numeric,gte=0"`
	}

	errs := Struct(item{Quantity: 0, Price: 9.5})
	assert.Contains(t, errs, "quantity")

	errs = Struct(item{Quantity: 2, Price: 9.5})
	assert.False(t, HasErrors(errs))
}

func TestStructIn(t *testing.T) {
	type payload struct {
		Kind string `json:"kind" validate:"required,in=home,work"`
	}
	assert.False(t, HasErrors(Struct(payload{Kind: "home"})))
	assert.Equal(t, "The selected kind is invalid.", Struct(payload{Kind: "office"})["kind"])
}
