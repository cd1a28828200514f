package entity

import "time"

type Flat struct {
	ID            string    `json:"id" firestore:"id"`
	OwnerUID      string    `json:"owner_uid" firestore:"ownerUID"`
	City          string    `json:"city" firestore:"city"`
	StreetName    string    `json:"street_name" firestore:"streetName"`
	StreetNumber  int       `json:"street_number" firestore:"streetNumber"`
	AreaSize      float64   `json:"area_size" firestore:"areaSize"`
	HasAC         bool      `json:"has_ac" firestore:"hasAC"`
	YearBuilt     int       `json:"year_built" firestore:"yearBuilt"`
	RentPrice     float64   `json:"rent_price" firestore:"rentPrice"`
	AvailableDate time.Time `json:"available_date" firestore:"availableDate"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}
