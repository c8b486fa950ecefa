package catalog

import (
	"time"

	"carsales-backend/internal/models"
)

var seededAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultCars returns the built-in sample catalog. Each call returns a fresh
// slice so callers may not mutate the shared data.
func DefaultCars() []models.CarRecord {
	cars := []models.CarRecord{
		{
			ID: "car-01", Name: "Civic", Brand: "Honda",
			PriceMin: 650000000, PriceMax: 850000000,
			Segment: "sedan", Seats: 5, FuelType: "petrol", Transmission: "automatic",
			EnginePower: "174 HP",
			Features:    "LED headlights, Honda Sensing, Apple CarPlay, Wireless charging",
			ImageURL:    "https://example.com/honda-civic.jpg",
		},
		{
			ID: "car-02", Name: "CR-V", Brand: "Honda",
			PriceMin: 950000000, PriceMax: 1200000000,
			Segment: "suv", Seats: 7, FuelType: "petrol", Transmission: "automatic",
			EnginePower: "190 HP",
			Features:    "AWD, Honda Sensing, Panoramic sunroof, 7-seat configuration",
			ImageURL:    "https://example.com/honda-crv.jpg",
		},
		{
			ID: "car-03", Name: "Accord", Brand: "Honda",
			PriceMin: 1200000000, PriceMax: 1500000000,
			Segment: "sedan", Seats: 5, FuelType: "hybrid", Transmission: "automatic",
			EnginePower: "212 HP",
			Features:    "Honda Sensing, Wireless charging, Premium audio, Hybrid system",
			ImageURL:    "https://example.com/honda-accord.jpg",
		},
		{
			ID: "car-04", Name: "Camry", Brand: "Toyota",
			PriceMin: 800000000, PriceMax: 1100000000,
			Segment: "sedan", Seats: 5, FuelType: "petrol", Transmission: "automatic",
			EnginePower: "203 HP",
			Features:    "Toyota Safety Sense, 8-inch touchscreen, Dual-zone AC",
			ImageURL:    "https://example.com/toyota-camry.jpg",
		},
		{
			ID: "car-05", Name: "RAV4", Brand: "Toyota",
			PriceMin: 900000000, PriceMax: 1300000000,
			Segment: "suv", Seats: 5, FuelType: "petrol", Transmission: "automatic",
			EnginePower: "203 HP",
			Features:    "AWD, Toyota Safety Sense, 7-inch display, All-wheel drive",
			ImageURL:    "https://example.com/toyota-rav4.jpg",
		},
		{
			ID: "car-06", Name: "Corolla Cross", Brand: "Toyota",
			PriceMin: 700000000, PriceMax: 950000000,
			Segment: "suv", Seats: 5, FuelType: "petrol", Transmission: "automatic",
			EnginePower: "169 HP",
			Features:    "Toyota Safety Sense, 9-inch touchscreen, LED headlights",
			ImageURL:    "https://example.com/toyota-corolla-cross.jpg",
		},
		{
			ID: "car-07", Name: "Mazda3", Brand: "Mazda",
			PriceMin: 600000000, PriceMax: 800000000,
			Segment: "sedan", Seats: 5, FuelType: "petrol", Transmission: "automatic",
			EnginePower: "165 HP",
			Features:    "Skyactiv technology, 8.8-inch display, Bose audio",
			ImageURL:    "https://example.com/mazda3.jpg",
		},
		{
			ID: "car-08", Name: "CX-5", Brand: "Mazda",
			PriceMin: 850000000, PriceMax: 1150000000,
			Segment: "suv", Seats: 5, FuelType: "petrol", Transmission: "automatic",
			EnginePower: "187 HP",
			Features:    "Skyactiv technology, AWD, 10.25-inch display, Premium interior",
			ImageURL:    "https://example.com/mazda-cx5.jpg",
		},
		{
			ID: "car-09", Name: "Tucson", Brand: "Hyundai",
			PriceMin: 750000000, PriceMax: 1050000000,
			Segment: "suv", Seats: 5, FuelType: "petrol", Transmission: "automatic",
			EnginePower: "177 HP",
			Features:    "SmartSense, 10.25-inch display, AWD, Panoramic sunroof",
			ImageURL:    "https://example.com/hyundai-tucson.jpg",
		},
		{
			ID: "car-10", Name: "Xpander", Brand: "Mitsubishi",
			PriceMin: 560000000, PriceMax: 700000000,
			Segment: "mpv", Seats: 7, FuelType: "petrol", Transmission: "automatic",
			EnginePower: "104 HP",
			Features:    "Family MPV, 7 seats in three rows, Flexible folding seats, Rear AC vents",
			ImageURL:    "https://example.com/mitsubishi-xpander.jpg",
		},
	}
	for i := range cars {
		cars[i].CreatedAt = seededAt
	}
	return cars
}

func DefaultShowrooms() []models.Showroom {
	return []models.Showroom{
		{
			ID: 1, Name: "Honda Center Hà Nội", Address: "123 Đường Láng, Đống Đa, Hà Nội",
			Latitude: 21.0285, Longitude: 105.8542,
			Phone: "024-1234-5678", Email: "hanoi@honda.com.vn", Website: "www.honda.com.vn",
			Brands: []string{"Honda"},
			Offers: []string{"Giảm 50 triệu", "Tặng bảo hiểm 1 năm", "Lãi suất 0%", "Tặng phụ kiện"},
		},
		{
			ID: 2, Name: "Honda Center TP.HCM", Address: "456 Nguyễn Văn Cừ, Quận 5, TP.HCM",
			Latitude: 10.7769, Longitude: 106.7009,
			Phone: "028-8765-4321", Email: "hcm@honda.com.vn", Website: "www.honda.com.vn",
			Brands: []string{"Honda"},
			Offers: []string{"Giảm 30 triệu", "Tặng phụ kiện", "Bảo dưỡng miễn phí", "Lãi suất ưu đãi"},
		},
		{
			ID: 3, Name: "Toyota Center Hà Nội", Address: "789 Đường Giải Phóng, Hai Bà Trưng, Hà Nội",
			Latitude: 21.0175, Longitude: 105.8369,
			Phone: "024-9876-5432", Email: "hanoi@toyota.com.vn", Website: "www.toyota.com.vn",
			Brands: []string{"Toyota"},
			Offers: []string{"Giảm 40 triệu", "Tặng bảo hiểm", "Lãi suất 0%", "Bảo dưỡng 5 năm"},
		},
		{
			ID: 4, Name: "Toyota Center TP.HCM", Address: "321 Đường Cách Mạng Tháng 8, Quận 10, TP.HCM",
			Latitude: 10.7626, Longitude: 106.6602,
			Phone: "028-1234-9876", Email: "hcm@toyota.com.vn", Website: "www.toyota.com.vn",
			Brands: []string{"Toyota"},
			Offers: []string{"Giảm 35 triệu", "Tặng phụ kiện cao cấp", "Lãi suất ưu đãi", "Bảo hành mở rộng"},
		},
		{
			ID: 5, Name: "Mazda Center Hà Nội", Address: "555 Đường Lê Văn Lương, Thanh Xuân, Hà Nội",
			Latitude: 21.0031, Longitude: 105.8201,
			Phone: "024-5555-1234", Email: "hanoi@mazda.com.vn", Website: "www.mazda.com.vn",
			Brands: []string{"Mazda"},
			Offers: []string{"Giảm 25 triệu", "Tặng bảo hiểm", "Lãi suất 0%", "Tặng phụ kiện Mazda"},
		},
		{
			ID: 6, Name: "Hyundai Center TP.HCM", Address: "777 Đường Nguyễn Thị Minh Khai, Quận 1, TP.HCM",
			Latitude: 10.7769, Longitude: 106.7009,
			Phone: "028-7777-8888", Email: "hcm@hyundai.com.vn", Website: "www.hyundai.com.vn",
			Brands: []string{"Hyundai"},
			Offers: []string{"Giảm 20 triệu", "Tặng bảo hiểm", "Lãi suất ưu đãi", "Bảo dưỡng miễn phí"},
		},
	}
}
