package identityapi

import "fmt"

// AuthState is the visitor authentication state sent with a sync request.
type AuthState int

const (
	// AuthStateUnknown - unknown or never authenticated.
	AuthStateUnknown AuthState = iota
	// AuthStateAuthenticated - authenticated for a particular instance, page, or app.
	AuthStateAuthenticated
	// AuthStateLoggedOut - logged out.
	AuthStateLoggedOut
)

// Code returns the numeric code transmitted to the service.
func (s AuthState) Code() int {
	return int(s)
}

func (s AuthState) String() string {
	switch s {
	case AuthStateUnknown:
		return "unknown"
	case AuthStateAuthenticated:
		return "authenticated"
	case AuthStateLoggedOut:
		return "loggedOut"
	default:
		return fmt.Sprintf("invalid(%d)", int(s))
	}
}
