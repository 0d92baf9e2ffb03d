package account

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account roles. Each role is a disjoint record set inside the accounts
// collection: uniqueness constraints are scoped per role, not global.
const (
	RoleStudent   = "student"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// Branches accepted for students and organizers
var Branches = []string{"CSE", "ECE", "ME", "CE", "EE", "Other"}

// Account represents a user account in the system. Branch and Semester are
// only populated for the roles that carry them.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	RollNumber   string             `bson:"roll_number" json:"roll_number"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         string             `bson:"role" json:"role"`
	Branch       string             `bson:"branch,omitempty" json:"branch,omitempty"`
	Semester     int                `bson:"semester,omitempty" json:"semester,omitempty"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfileImage string             `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidRole reports whether role names one of the three account variants
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleOrganizer || role == RoleAdmin
}

// ValidBranch reports whether branch is in the closed branch enum
func ValidBranch(branch string) bool {
	for _, b := range Branches {
		if b == branch {
			return true
		}
	}
	return false
}
