package services

import "errors"

// ErrUpstream marks a collaborator request that failed after its retry
// budget. Controllers answer 502 so the app shows a dismissible error with
// an explicit retry, instead of pretending the data does not exist.
var ErrUpstream = errors.New("services: upstream unavailable")
