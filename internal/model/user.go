package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleCustomer = "customer"
)

type Image struct {
	PublicID     string `bson:"public_id" json:"publicId"`
	URL          string `bson:"url" json:"url"`
	OriginalName string `bson:"originalname" json:"originalName"`
}

type User struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string        `bson:"name" json:"name"`
	Email          string        `bson:"email" json:"email"`
	Password       string        `bson:"password" json:"-"`
	Roles          []string      `bson:"roles" json:"roles"`
	Active         bool          `bson:"active" json:"active"`
	Images         []Image       `bson:"image" json:"image"`
	ResetToken     string        `bson:"resetToken,omitempty" json:"-"`
	ResetTokenUsed bool          `bson:"resetTokenUsed" json:"-"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// AuthUser is the identity the auth middleware attaches to the request
// context after a token passes verification.
type AuthUser struct {
	Email string
	Roles []string
}

func (u *AuthUser) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range u.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
