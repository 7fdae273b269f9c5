package models

import "time"

type Event struct {
	EventID     string    `json:"eventid" bson:"eventid"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Location    string    `json:"location" bson:"location"`
	StartDate   time.Time `json:"start_date" bson:"start_date"`
	EndDate     time.Time `json:"end_date" bson:"end_date"`
	Price       float64   `json:"price" bson:"price"`
	IsFree      bool      `json:"is_free" bson:"is_free"`
	CategoryID  string    `json:"categoryid" bson:"categoryid"`
	OrganizerID string    `json:"organizerid" bson:"organizerid"`
	BannerURL   string    `json:"banner_url,omitempty" bson:"banner_url,omitempty"`
	WebsiteURL  string    `json:"website_url,omitempty" bson:"website_url,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type Category struct {
	CategoryID string    `json:"categoryid" bson:"categoryid"`
	Name       string    `json:"name" bson:"name"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
