package domain

// Identity is who a verified access token says the caller is.
type Identity struct {
	Username string
	UserID   int64
	Role     string
}

// TokenResult is what register and login hand back.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
}
