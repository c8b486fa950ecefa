// Package catalog holds the read-only car catalog and the text templates
// built from it for embeddings and recommendation prompts.
package catalog

import (
	"fmt"
	"strings"

	"carsales-backend/internal/models"
)

// Catalog is an immutable, id-indexed view of the car list. Safe for
// concurrent reads.
type Catalog struct {
	cars []models.CarRecord
	byID map[string]int
}

func New(cars []models.CarRecord) *Catalog {
	c := &Catalog{
		cars: make([]models.CarRecord, len(cars)),
		byID: make(map[string]int, len(cars)),
	}
	copy(c.cars, cars)
	for i, car := range c.cars {
		c.byID[car.ID] = i
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.cars)
}

func (c *Catalog) All() []models.CarRecord {
	out := make([]models.CarRecord, len(c.cars))
	copy(out, c.cars)
	return out
}

func (c *Catalog) Get(id string) (models.CarRecord, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.CarRecord{}, false
	}
	return c.cars[i], true
}

// Lookup resolves ids in order, skipping ids the catalog does not know.
func (c *Catalog) Lookup(ids []string) []models.CarRecord {
	out := make([]models.CarRecord, 0, len(ids))
	for _, id := range ids {
		if car, ok := c.Get(id); ok {
			out = append(out, car)
		}
	}
	return out
}

func (c *Catalog) Filter(f models.CarFilter) []models.CarRecord {
	out := make([]models.CarRecord, 0, len(c.cars))
	for _, car := range c.cars {
		if f.Segment != "" && !strings.EqualFold(car.Segment, f.Segment) {
			continue
		}
		if f.Brand != "" && !strings.EqualFold(car.Brand, f.Brand) {
			continue
		}
		if f.MinSeats > 0 && car.Seats < f.MinSeats {
			continue
		}
		if f.MaxPrice > 0 && car.PriceMin > f.MaxPrice {
			continue
		}
		out = append(out, car)
	}
	return out
}

// EmbeddingText is the canonical text a car's vector is computed from.
func EmbeddingText(car models.CarRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", car.Name)
	fmt.Fprintf(&b, "brand: %s\n", car.Brand)
	fmt.Fprintf(&b, "price_min: %d\n", car.PriceMin)
	fmt.Fprintf(&b, "price_max: %d\n", car.PriceMax)
	fmt.Fprintf(&b, "segment: %s\n", car.Segment)
	fmt.Fprintf(&b, "seats: %d\n", car.Seats)
	fmt.Fprintf(&b, "fuel_type: %s\n", car.FuelType)
	fmt.Fprintf(&b, "transmission: %s\n", car.Transmission)
	return b.String()
}

// Metadata is the per-vector metadata stored next to each embedding.
func Metadata(car models.CarRecord) map[string]any {
	return map[string]any{
		"name":         car.Name,
		"brand":        car.Brand,
		"image":        car.ImageURL,
		"segment":      car.Segment,
		"seats":        car.Seats,
		"transmission": car.Transmission,
		"fuel_type":    car.FuelType,
		"engine_power": car.EnginePower,
	}
}

// BuildContext renders matched cars as the context block of the
// recommendation prompt.
func BuildContext(cars []models.CarRecord) string {
	var b strings.Builder
	for _, car := range cars {
		fmt.Fprintf(&b, "Tên: %s\n", car.Name)
		fmt.Fprintf(&b, "Mô tả: %s\n", car.Features)
		fmt.Fprintf(&b, "Hãng: %s\n", car.Brand)
		fmt.Fprintf(&b, "Loại: %s\n", car.Segment)
		fmt.Fprintf(&b, "Số ghế: %d\n", car.Seats)
		fmt.Fprintf(&b, "Nhiên liệu: %s\n", car.FuelType)
		fmt.Fprintf(&b, "Hộp số: %s\n", car.Transmission)
		fmt.Fprintf(&b, "Mã lực: %s\n", car.EnginePower)
		fmt.Fprintf(&b, "Hình ảnh: %s\n\n", car.ImageURL)
	}
	return strings.TrimSpace(b.String())
}
