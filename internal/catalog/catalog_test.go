package catalog

import (
	"strings"
	"testing"

	"carsales-backend/internal/models"
)

func TestDefaultCars_TenUniqueIDs(t *testing.T) {
	cars := DefaultCars()
	if len(cars) != 10 {
		t.Fatalf("expected 10 sample cars, got %d", len(cars))
	}

	seen := make(map[string]bool)
	for _, car := range cars {
		if seen[car.ID] {
			t.Fatalf("duplicate car id %q", car.ID)
		}
		seen[car.ID] = true
		if car.CreatedAt.IsZero() {
			t.Fatalf("car %q has no creation timestamp", car.ID)
		}
	}
}

func TestDefaultCars_ContainsSevenSeatMPV(t *testing.T) {
	var found bool
	for _, car := range DefaultCars() {
		if car.Segment == "mpv" && car.Seats == 7 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a seven-seat MPV in the sample catalog")
	}
}

func TestCatalog_LookupSkipsUnknownAndKeepsOrder(t *testing.T) {
	c := New(DefaultCars())

	got := c.Lookup([]string{"car-10", "missing", "car-01"})
	if len(got) != 2 {
		t.Fatalf("expected 2 cars, got %d", len(got))
	}
	if got[0].Name != "Xpander" || got[1].Name != "Civic" {
		t.Fatalf("unexpected order: %q, %q", got[0].Name, got[1].Name)
	}
}

func TestCatalog_IsolatedFromCallerSlice(t *testing.T) {
	cars := DefaultCars()
	c := New(cars)
	cars[0].Name = "mutated"

	got, ok := c.Get("car-01")
	if !ok || got.Name != "Civic" {
		t.Fatalf("catalog should not share the caller's slice, got %+v", got)
	}
}

func TestCatalog_Filter(t *testing.T) {
	c := New(DefaultCars())

	tests := []struct {
		name   string
		filter models.CarFilter
		want   int
	}{
		{"no filter", models.CarFilter{}, 10},
		{"suv only", models.CarFilter{Segment: "SUV"}, 5},
		{"seven seats", models.CarFilter{MinSeats: 7}, 2},
		{"toyota", models.CarFilter{Brand: "toyota"}, 3},
		{"under 700m", models.CarFilter{MaxPrice: 700000000}, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Filter(tc.filter); len(got) != tc.want {
				t.Errorf("expected %d cars, got %d", tc.want, len(got))
			}
		})
	}
}

func TestEmbeddingText_CanonicalFields(t *testing.T) {
	car, _ := New(DefaultCars()).Get("car-02")
	text := EmbeddingText(car)

	for _, want := range []string{
		"name: CR-V\n",
		"brand: Honda\n",
		"price_min: 950000000\n",
		"price_max: 1200000000\n",
		"segment: suv\n",
		"seats: 7\n",
		"fuel_type: petrol\n",
		"transmission: automatic\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("embedding text missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, car.Features) {
		t.Errorf("features are stored as the document, not embedded")
	}
}

func TestBuildContext(t *testing.T) {
	c := New(DefaultCars())
	ctx := BuildContext(c.Lookup([]string{"car-01", "car-10"}))

	if !strings.HasPrefix(ctx, "Tên: Civic\n") {
		t.Fatalf("unexpected context start: %q", ctx)
	}
	if !strings.Contains(ctx, "\n\nTên: Xpander\n") {
		t.Fatalf("records should be separated by a blank line:\n%s", ctx)
	}
	if strings.HasSuffix(ctx, "\n") {
		t.Fatalf("context should be trimmed")
	}
	if BuildContext(nil) != "" {
		t.Fatalf("empty match list should give empty context")
	}
}
