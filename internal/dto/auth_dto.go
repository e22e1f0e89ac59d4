package dto

// LoginRequest carries the credentials for password authentication.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse returns the signed access token and its subject.
type TokenResponse struct {
	Token     string `json:"token"`
	PersonID  string `json:"person_id"`
	Role      string `json:"role"`
	ExpiresIn int64  `json:"expires_in"`
}
