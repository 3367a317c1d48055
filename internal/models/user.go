package models

import "time"

// Role is the coarse permission tier carried in the session token.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// IsAdmin reports whether the role grants administrative capabilities
// (catalog writes, cross-user order access, status updates).
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User represents an account of the store.
type User struct {
	ID           uint      `json:"user_id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(50)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(100)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255)"` // No json tag value for security
	FirstName    string    `json:"first_name" gorm:"type:varchar(50)"`
	LastName     string    `json:"last_name" gorm:"type:varchar(50)"`
	Role         Role      `json:"user_type" gorm:"column:user_type;type:varchar(20);default:customer"`
	Phone        string    `json:"phone,omitempty" gorm:"type:varchar(15)"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Orders []Order `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// FullName is the display name embedded in session tokens.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
