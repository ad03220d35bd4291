package controllers

import (
	"net/http"

	"github.com/Aleksandergreg/storefront/app/services"
	"github.com/Aleksandergreg/storefront/app/stores"
	"github.com/Aleksandergreg/storefront/pkg/middleware"
	"github.com/Aleksandergreg/storefront/pkg/response"
	"github.com/Aleksandergreg/storefront/pkg/validate"
)

type AuthController struct {
	session *stores.SessionStore
}

func NewAuthController(session *stores.SessionStore) *AuthController {
	return &AuthController{session: session}
}

type credentialsInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body credentialsInput
	if !decode(w, r, &body) {
		return
	}
	if errs := validate.Struct(body); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	session, err := c.session.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, session)
}

func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var body credentialsInput
	if !decode(w, r, &body) {
		return
	}
	if errs := validate.Struct(body); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	session, err := c.session.Signup(r.Context(), body.Email, body.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, session)
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.session.Logout(r.Context(), middleware.EmailFromCtx(r.Context()))
	response.Success(w, map[string]bool{"logged_out": true})
}

// Biometrics reads the biometric-login preference.
func (c *AuthController) Biometrics(w http.ResponseWriter, r *http.Request) {
	enabled, err := c.session.Biometrics(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]bool{"enabled": enabled})
}

// SetBiometrics stores the biometric-login preference.
func (c *AuthController) SetBiometrics(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if !decode(w, r, &body) {
		return
	}

	if err := c.session.SetBiometrics(r.Context(), body.Enabled); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]bool{"enabled": body.Enabled})
}

// BiometricLogin resumes the last registered user's session after the
// device reports a biometric prompt outcome.
func (c *AuthController) BiometricLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Outcome string `json:"outcome" validate:"required"`
	}
	if !decode(w, r, &body) {
		return
	}
	if errs := validate.Struct(body); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	outcome, err := services.ParseBiometricOutcome(body.Outcome)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Unknown biometric outcome")
		return
	}
	if !outcome.Allows() {
		response.Error(w, http.StatusUnauthorized, outcome.Message())
		return
	}

	session, err := c.session.ResumeBiometric(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, session)
}
