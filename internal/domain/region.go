package domain

// Direction is one of the four geographic partitions that scope admin visibility.
type Direction string

const (
	DirectionEast  Direction = "East"
	DirectionWest  Direction = "West"
	DirectionNorth Direction = "North"
	DirectionSouth Direction = "South"
)

// Directions lists the valid partitions in display order.
var Directions = []Direction{DirectionEast, DirectionWest, DirectionNorth, DirectionSouth}

// Valid reports whether d is one of the four partitions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionEast, DirectionWest, DirectionNorth, DirectionSouth:
		return true
	}
	return false
}

// Role is a user account role.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}
