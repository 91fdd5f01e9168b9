package moderation

import "errors"

var (
	ErrInsufficientPrivilege = errors.New("administrator privileges required")
	ErrRankConflict          = errors.New("target rank is equal to or above your own")
	ErrUnknownMember         = errors.New("no membership record for user")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrExternalEnforcement   = errors.New("platform enforcement call failed")
	ErrStoreUnavailable      = errors.New("storage unavailable")
)
