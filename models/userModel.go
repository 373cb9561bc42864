package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	FirstName            string     `json:"firstName" gorm:"size:100;not null"`
	LastName             string     `json:"lastName" gorm:"size:100;not null"`
	Email                string     `json:"email" gorm:"size:191;uniqueIndex;not null"`
	Password             string     `json:"-" gorm:"not null"`
	AcceptedTerms        bool       `json:"acceptedTerms"`
	Role                 string     `json:"role" gorm:"size:20;not null;default:user"`
	IsActive             bool       `json:"isActive" gorm:"not null;default:true"`
	IsVerified           bool       `json:"isVerified" gorm:"not null;default:false"`
	PasswordResetToken   *string    `json:"-" gorm:"size:64;index"`
	PasswordResetExpires *time.Time `json:"-"`
	LastLogin            *time.Time `json:"lastLogin"`
}

// UserResponse is the outward view of a user. It never carries credentials.
type UserResponse struct {
	ID        uint       `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (u User) Public() UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
	}
}

type RegisterData struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	AcceptedTerms bool   `json:"acceptedTerms"`
}

type LoginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
