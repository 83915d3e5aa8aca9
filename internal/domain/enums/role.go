package enums

type Role string

const (
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)
