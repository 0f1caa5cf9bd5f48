package auth

import "skywatch/crewdeck/internal/constants"

// UserClaims is what every authenticated request carries
type UserClaims interface {
	UserID() string
	Email() string
	Role() constants.Role
	Source() string
	HasPermission(action Action) bool
}

// JWTClaims are built by the auth middleware once the bearer token is
// verified and the profile row is loaded.
type JWTClaims struct {
	UserUUID   string
	EmailValue string
	RoleValue  constants.Role
}

func (c *JWTClaims) UserID() string       { return c.UserUUID }
func (c *JWTClaims) Email() string        { return c.EmailValue }
func (c *JWTClaims) Role() constants.Role { return c.RoleValue }
func (c *JWTClaims) Source() string       { return "JWT" }
func (c *JWTClaims) HasPermission(action Action) bool {
	return CanPerform(c.RoleValue, action)
}
