package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"carsales-backend/internal/models"
)

type carCatalog interface {
	Get(id string) (models.CarRecord, bool)
	Filter(f models.CarFilter) []models.CarRecord
}

type CatalogHandler struct {
	cars      carCatalog
	showrooms []models.Showroom
}

func NewCatalogHandler(cars carCatalog, showrooms []models.Showroom) *CatalogHandler {
	return &CatalogHandler{cars: cars, showrooms: showrooms}
}

// ListCars supports ?segment=&brand=&min_seats=&max_price= filters.
func (h *CatalogHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.CarFilter{
		Segment: q.Get("segment"),
		Brand:   q.Get("brand"),
	}

	if v := q.Get("min_seats"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid filter",
				map[string]string{"min_seats": "must be a non-negative integer"}, r))
			return
		}
		filter.MinSeats = n
	}
	if v := q.Get("max_price"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid filter",
				map[string]string{"max_price": "must be a non-negative integer"}, r))
			return
		}
		filter.MaxPrice = n
	}

	cars := h.cars.Filter(filter)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cars":  cars,
		"total": len(cars),
	})
}

func (h *CatalogHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	car, ok := h.cars.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Car not found", r))
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *CatalogHandler) ListShowrooms(w http.ResponseWriter, r *http.Request) {
	brand := r.URL.Query().Get("brand")

	out := make([]models.Showroom, 0, len(h.showrooms))
	for _, s := range h.showrooms {
		if brand == "" || containsFold(s.Brands, brand) {
			out = append(out, s)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"showrooms": out,
		"total":     len(out),
	})
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
