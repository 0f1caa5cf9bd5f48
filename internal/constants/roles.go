package constants

import (
	"database/sql/driver"
	"fmt"
)

// Role mirrors the profiles.role column
type Role string

const (
	RolePilot Role = "pilot"
	RoleChief Role = "chief"
)

// Stringer, convenient for fmt / logs
func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the two team roles
func (r Role) Valid() bool {
	return r == RolePilot || r == RoleChief
}

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (r *Role) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = Role(v)
	case []byte:
		*r = Role(v)
	default:
		return fmt.Errorf("Role: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r Role) Value() (driver.Value, error) { return string(r), nil }
