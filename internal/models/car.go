package models

import "time"

type CarRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	PriceMin     int64     `json:"price_min"`
	PriceMax     int64     `json:"price_max"`
	Segment      string    `json:"segment"` // "sedan" | "suv" | "mpv" | "hatchback"
	Seats        int       `json:"seats"`
	FuelType     string    `json:"fuel_type"`
	Transmission string    `json:"transmission"`
	EnginePower  string    `json:"engine_power"`
	Features     string    `json:"features"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
}

type Showroom struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Phone     string   `json:"phone"`
	Email     string   `json:"email"`
	Website   string   `json:"website"`
	Brands    []string `json:"brands"`
	Offers    []string `json:"offers"`
}

// CarFilter narrows catalog listings. Zero values mean "no constraint".
type CarFilter struct {
	Segment  string
	Brand    string
	MinSeats int
	MaxPrice int64
}
