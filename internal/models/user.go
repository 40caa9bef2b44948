package models

const RoleAdmin = "admin"

type User struct {
	FirstName string `bson:"first_name,omitempty" json:"firstName,omitempty"`
	LastName  string `bson:"last_name,omitempty" json:"lastName,omitempty"`
	Username  string `bson:"username" json:"username"`
	Password  string `bson:"password" json:"-"`
	Role      string `bson:"role" json:"role"`
	Base      `bson:",inline"`
}

func NewUser(username, hashedPassword, role string) *User {
	return &User{
		Username: username,
		Password: hashedPassword,
		Role:     role,
		Base:     NewBase(),
	}
}
