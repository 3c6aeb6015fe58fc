package user

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

var AllRoles = []Role{
	RoleEmployee,
	RoleManager,
	RoleAdmin,
}

func (r Role) IsValid() bool {
	for _, v := range AllRoles {
		if r == v {
			return true
		}
	}
	return false
}

func (r Role) CanReview() bool {
	return r == RoleManager || r == RoleAdmin
}
