package domain

import "time"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password,omitempty"` // Stored as-is; cleared before leaving the service layer
	CreatedAt time.Time `json:"created_at"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required"`
}

type SignupResponse struct {
	UserID string `json:"user_id"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}
