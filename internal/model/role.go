package model

import "fmt"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
)

// ParseRole accepts the stored role names, case-insensitive, plus the
// Turkish label older clients sent for cashiers.
func ParseRole(s string) (Role, error) {
	switch NormalizeName(s) {
	case "admin", "administrator", "yonetici":
		return RoleAdmin, nil
	case "cashier", "kasiyer":
		return RoleCashier, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }
