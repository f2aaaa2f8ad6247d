package model

const TokenTypeBearer = "bearer"

// LoginRequest is the OAuth2 password-grant form: username carries the email.
// Password may be empty but must be present.
type LoginRequest struct {
	Username string  `form:"username" binding:"required"`
	Password *string `form:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
