package entity

import (
	"strings"
	"time"
)

type User struct {
	ID        string    `json:"id" firestore:"id"`
	Email     string    `json:"email" firestore:"email"`
	FirstName string    `json:"first_name" firestore:"firstName"`
	LastName  string    `json:"last_name" firestore:"lastName"`
	BirthDate time.Time `json:"birth_date" firestore:"birthDate"`
	IsAdmin   bool      `json:"is_admin" firestore:"isAdmin"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// DisplayName is the name shown next to a user's messages. Either name part
// may be empty for accounts created through a social provider.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// PublicProfile strips the fields other users are not supposed to see.
func (u *User) PublicProfile() *User {
	return &User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}
