package entity

import (
	"time"
)

const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

// User is the aggregate root for the accounts domain. Password holds the
// bcrypt hash and is only populated by the explicit WithPassword reads; the
// transient token fields carry the reset / email-verify flow state.
type User struct {
	ID                        string    `json:"id"`
	Name                      string    `json:"name"`
	Email                     string    `json:"email"`
	Role                      string    `json:"role"`
	Password                  string    `json:"-"`
	Avatar                    string    `json:"avatar,omitempty"`
	PasswordChangedAt         time.Time `json:"-"`
	CreatedAt                 time.Time `json:"-"`
	Active                    bool      `json:"-"`
	ReasonDeleteAccount       string    `json:"-"`
	EmailVerify               bool      `json:"emailVerify"`
	EmailVerifyOTP            string    `json:"-"`
	EmailVerifyOTPTimeout     time.Time `json:"-"`
	PasswordResetToken        string    `json:"-"`
	PasswordResetTokenTimeout time.Time `json:"-"`
}

// PasswordChangedAfter reports whether the password was rotated after the
// given token issue time (epoch seconds). Tokens issued before a credential
// rotation must be rejected.
func (u *User) PasswordChangedAfter(issuedAt int64) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt
}
