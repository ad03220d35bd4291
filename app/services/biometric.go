// Package services holds clients for the storefront's collaborators:
// catalog, payment provider, reverse geocoder, device biometrics.
package services

import "fmt"

// BiometricOutcome is the terminal result the device reports after a
// biometric prompt. Only Success unlocks a session resume; everything else
// leaves the user on the login screen with an outcome-specific message.
type BiometricOutcome string

const (
	BiometricSuccess      BiometricOutcome = "SUCCESS"
	BiometricCancelled    BiometricOutcome = "CANCELLED"
	BiometricNotSupported BiometricOutcome = "NOT_SUPPORTED"
	BiometricNotEnrolled  BiometricOutcome = "NOT_ENROLLED"
	BiometricError        BiometricOutcome = "ERROR"
)

// ParseBiometricOutcome validates a device-reported outcome string.
func ParseBiometricOutcome(s string) (BiometricOutcome, error) {
	switch BiometricOutcome(s) {
	case BiometricSuccess, BiometricCancelled, BiometricNotSupported,
		BiometricNotEnrolled, BiometricError:
		return BiometricOutcome(s), nil
	}
	return "", fmt.Errorf("services: unknown biometric outcome %q", s)
}

// Allows reports whether the outcome permits resuming the saved session.
func (o BiometricOutcome) Allows() bool {
	return o == BiometricSuccess
}

// Message is the user-facing explanation for a non-success outcome.
func (o BiometricOutcome) Message() string {
	switch o {
	case BiometricSuccess:
		return ""
	case BiometricCancelled:
		return "Biometric prompt was cancelled"
	case BiometricNotSupported:
		return "This device does not support biometric login"
	case BiometricNotEnrolled:
		return "No biometrics enrolled on this device"
	default:
		return "Biometric authentication failed"
	}
}
