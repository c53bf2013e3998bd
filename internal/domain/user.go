package domain

import "time"

// Role is the closed four-tier authorization level stored on every account.
type Role int

const (
	RoleUser    Role = 0
	RoleVendor  Role = 1
	RoleMaster  Role = 2
	RoleSupport Role = 3
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r >= RoleUser && r <= RoleSupport
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleVendor:
		return "vendor"
	case RoleMaster:
		return "master"
	case RoleSupport:
		return "support"
	default:
		return "unknown"
	}
}

// CanManageCatalog reports whether the role may create products and submit
// catalog content. Masters may additionally edit or delete any product.
func (r Role) CanManageCatalog() bool {
	return r == RoleVendor || r == RoleMaster
}

// CanManageOrders reports whether the role may view all orders and drive
// status transitions.
func (r Role) CanManageOrders() bool {
	return r == RoleVendor || r == RoleMaster
}

// CanManageUsers reports whether the role may list users, change roles and
// provision admin accounts.
func (r Role) CanManageUsers() bool {
	return r == RoleMaster
}

// CanModerate reports whether the role owns the catalog taxonomy: keywords,
// crop master data, logistics carriers, pending product review and system
// notifications.
func (r Role) CanModerate() bool {
	return r == RoleMaster
}

// IsSupport reports whether the role has visibility into the customer
// assistance channel. Support is orthogonal to catalog/order permissions.
func (r Role) IsSupport() bool {
	return r == RoleSupport || r == RoleMaster
}

type User struct {
	ID              int64     `json:"id,string" form:"id"`
	Phone           string    `gorm:"uniqueIndex;size:32" json:"phone" form:"phone"`
	Password        string    `json:"-" form:"-"`
	Name            string    `json:"name" form:"name"`
	BookingAddress  string    `gorm:"size:1024" json:"booking_address" form:"booking_address"`
	DeliveryAddress string    `gorm:"size:1024" json:"delivery_address" form:"delivery_address"`
	Role            Role      `gorm:"index" json:"role" form:"role"`
	PushToken       string    `gorm:"size:512" json:"-"`
	LastLogin       time.Time `json:"last_login"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "mkt_user"
}
