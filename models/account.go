// models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleEmployee = "employee"
	RoleHR       = "hr"
)

// Affiliation records that an employee belongs to an HR's company. The
// first approval under a given HR creates it; an employee holds at most
// one entry per hrEmail.
type Affiliation struct {
	CompanyName string    `bson:"companyName" json:"companyName"`
	HREmail     string    `bson:"hrEmail" json:"hrEmail"`
	JoinedAt    time.Time `bson:"joinedAt" json:"joinedAt"`
}

type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // stored lowercased
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         string             `bson:"role" json:"role"` // employee, hr
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`
	BirthDate    string             `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`

	// HR-only fields.
	CompanyName      string `bson:"companyName,omitempty" json:"companyName,omitempty"`
	CompanyLogo      string `bson:"companyLogo,omitempty" json:"companyLogo,omitempty"`
	PackageLimit     int    `bson:"packageLimit,omitempty" json:"packageLimit,omitempty"`
	CurrentEmployees int    `bson:"currentEmployees" json:"currentEmployees"`
	Subscription     string `bson:"subscription,omitempty" json:"subscription,omitempty"`

	// Employee-only field.
	Affiliations []Affiliation `bson:"affiliations,omitempty" json:"affiliations,omitempty"`
}

// HasAffiliation reports whether the account already belongs to the
// company run by hrEmail. Comparison is on the normalized email.
func (a *Account) HasAffiliation(hrEmail string) bool {
	for _, aff := range a.Affiliations {
		if aff.HREmail == hrEmail {
			return true
		}
	}
	return false
}
