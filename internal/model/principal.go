package model

// Principal is the authenticated caller attached to a request: the stored
// user plus the claims of the access token the request arrived with.
type Principal struct {
	User   User
	Claims *SessionClaims
}
