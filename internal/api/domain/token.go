package domain

// LoginResult is what a successful login returns: the authenticated user plus
// a fresh access/refresh token pair.
type LoginResult struct {
	User         User
	AccessToken  string
	RefreshToken string
}
