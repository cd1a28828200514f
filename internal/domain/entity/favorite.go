package entity

import "time"

type Favorite struct {
	FlatID  string    `json:"flat_id" firestore:"id"`
	AddedAt time.Time `json:"added_at" firestore:"addedAt,serverTimestamp"`
}
