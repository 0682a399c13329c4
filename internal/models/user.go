package models

import "time"

type Role string

const (
	RoleAgent         Role = "agent"
	RoleSupervisor    Role = "supervisor"
	RoleAdministrator Role = "administrator"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleAgent, RoleSupervisor, RoleAdministrator:
		return true
	}
	return false
}

type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Role         Role   `gorm:"type:varchar(50);not null" json:"role"`
	// Station is the user's attendance post ("posto de atendimento").
	Station string `gorm:"type:varchar(100)" json:"station"`
	Active  bool   `gorm:"not null;default:true" json:"active"`
	// SessionToken rotates on every login; only the latest session is valid.
	SessionToken string    `gorm:"type:varchar(255)" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
