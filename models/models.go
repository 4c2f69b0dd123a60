package models

import (
	"time"
)

// User roles shared with the auth and order services.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// ValidRole reports whether role is one of the enumerated user roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCustomer
}

// User represents an account owned by this service.
//
// Soft deletion is the IsActive flag, not gorm's DeletedAt: an inactive
// account stays in storage and is only hidden from customer-facing reads.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FirstName    string    `json:"first_name" gorm:"size:100;not null"`
	LastName     string    `json:"last_name" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password     string    `json:"-" gorm:"default:null"`
	RefreshToken string    `json:"-" gorm:"default:null"`
	Role         string    `json:"role" gorm:"size:20;default:'customer'"`
	GoogleID     string    `json:"google_id,omitempty" gorm:"default:null"`
	IsGoogleUser bool      `json:"is_google_user" gorm:"default:false"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Addresses []Address `json:"addresses" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Address is a shipping address owned by a user. At most one address per
// user carries IsDefault=true; a user with any addresses has exactly one.
type Address struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	IsDefault bool      `json:"is_default" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the validated claim pair attached to every request on the
// end-user surface. Credential verification happens upstream.
type Identity struct {
	UserID uint
	Role   string
}

// IsAdmin reports whether the identity holds the administrative role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Statistics holds the aggregate account counts for the admin dashboard.
type Statistics struct {
	TotalUsers    int64 `json:"total_users"`
	AdminCount    int64 `json:"admin_count"`
	CustomerCount int64 `json:"customer_count"`
	GoogleUsers   int64 `json:"google_users"`
}
