package domain

import perr "expiryai/internal/platform/errors"

// ErrRunInProgress is returned when another run holds the process lock or the run lease
var ErrRunInProgress = perr.New(perr.ErrorCodeConflict, "expiryrun: a run is already in progress")
