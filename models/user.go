package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Platform roles. SuperAdmin is not bound to a tenant; the other roles
// only exist inside one.
const (
	RoleSuperAdmin = "super_admin"
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleMember     = "member"
)

// User is a platform actor. TenantID is empty for super admins.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Name      string    `json:"name"`
	TenantID  string    `json:"tenant_id" gorm:"size:36;index"`
	Role      string    `json:"role" gorm:"size:20;not null;default:'member'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (user *User) BeforeSave(tx *gorm.DB) (err error) {
	if user.Password != "" && !isBcryptHash(user.Password) {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.Password = string(hashedPassword)
	}
	return nil
}

func (user *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(plain)) == nil
}

// IsSuperAdmin reports whether the user holds the platform-level role.
func (user *User) IsSuperAdmin() bool {
	return user.Role == RoleSuperAdmin
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (s[:4] == "$2a$" || s[:4] == "$2b$" || s[:4] == "$2y$")
}
