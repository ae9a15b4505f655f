package domain

// Identity is what the session token discloses about its holder. It is
// decoded for display purposes only; the commerce API is the verifier.
type Identity struct {
	UserID string
	Name   string
}

// Credentials is the result of a successful sign-in or sign-up: the opaque
// bearer token plus the profile the commerce API returned alongside it.
type Credentials struct {
	Token string
	Name  string
	Email string
	Role  string
}

// Registration is the sign-up request payload.
type Registration struct {
	Name       string
	Email      string
	Phone      string
	Password   string
	RePassword string
}
