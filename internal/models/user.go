package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"` // Never send password to client
	Name     string             `json:"name" bson:"name"`
	Picture  string             `json:"picture,omitempty" bson:"picture,omitempty"`

	// Gmail connection. Tokens are provisioned by the external consent
	// flow and only read here; the stats engine never refreshes them
	// mid-aggregation.
	GoogleAccessToken  string    `json:"-" bson:"googleAccessToken,omitempty"`
	GoogleRefreshToken string    `json:"-" bson:"googleRefreshToken,omitempty"`
	GoogleTokenExpiry  time.Time `json:"-" bson:"googleTokenExpiry,omitempty"`

	RefreshToken string    `json:"-" bson:"refreshToken,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
