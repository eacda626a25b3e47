package contract

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=2,max=32,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=64,hasupper,haslower,hasdigit"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}
