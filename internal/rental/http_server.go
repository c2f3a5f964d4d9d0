package rental

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/CarRentLink/CarRentLink/internal/car"
	"github.com/CarRentLink/CarRentLink/internal/customer"
)

// HTTPServer 注册表的 HTTP/JSON 传输层，业务逻辑全部在 Service。
type HTTPServer struct {
	svc *Service
}

func NewHTTPServer(svc *Service) *HTTPServer {
	return &HTTPServer{svc: svc}
}

// Mount 挂载业务路由。
func (h *HTTPServer) Mount(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/cars", h.addCar)
		r.Get("/cars", h.listCars)
		r.Get("/cars/{id}", h.getCar)
		r.Put("/cars/{id}/status", h.setCarStatus)

		r.Post("/customers", h.addCustomer)
		r.Get("/customers/{id}", h.getCustomer)

		r.Post("/rentals", h.rentCar)
		r.Post("/rentals/return", h.returnCar)
		r.Get("/rentals", h.listRentals)

		r.Get("/summary", h.summary)
	})
}

type addCarRequest struct {
	ID        string  `json:"id"`
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	Year      int     `json:"year"`
	DailyRate float64 `json:"daily_rate"`
}

func (h *HTTPServer) addCar(w http.ResponseWriter, r *http.Request) {
	var req addCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c := &car.Car{
		ID:        strings.TrimSpace(req.ID),
		Make:      strings.TrimSpace(req.Make),
		Model:     strings.TrimSpace(req.Model),
		Year:      req.Year,
		DailyRate: req.DailyRate,
	}
	if err := h.svc.AddCar(r.Context(), c); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *HTTPServer) listCars(w http.ResponseWriter, r *http.Request) {
	var cars []car.Car
	if v := r.URL.Query().Get("available"); v == "1" || strings.EqualFold(v, "true") {
		cars = h.svc.AvailableCars()
	} else {
		cars = h.svc.Cars()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cars":  cars,
		"total": len(cars),
	})
}

func (h *HTTPServer) getCar(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}
	c, err := h.svc.FindCar(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type setCarStatusRequest struct {
	Status string `json:"status"`
}

func (h *HTTPServer) setCarStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	var req setCarStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	st := car.Status(strings.TrimSpace(req.Status))
	if st == "" {
		writeError(w, http.StatusBadRequest, "status required")
		return
	}
	c, err := h.svc.SetCarStatus(r.Context(), id, st)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type addCustomerRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *HTTPServer) addCustomer(w http.ResponseWriter, r *http.Request) {
	var req addCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c := &customer.Customer{
		ID:    strings.TrimSpace(req.ID),
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
	}
	if err := h.svc.AddCustomer(r.Context(), c); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *HTTPServer) getCustomer(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}
	c, err := h.svc.FindCustomer(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type rentCarRequest struct {
	CustomerID string `json:"customer_id"`
	CarID      string `json:"car_id"`
	Days       int    `json:"days"`
}

func (h *HTTPServer) rentCar(w http.ResponseWriter, r *http.Request) {
	var req rentCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.CustomerID) == "" || strings.TrimSpace(req.CarID) == "" {
		writeError(w, http.StatusBadRequest, "customer_id/car_id required")
		return
	}
	rec, err := h.svc.RentCar(r.Context(), req.CustomerID, req.CarID, req.Days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

type returnCarRequest struct {
	CarID string `json:"car_id"`
}

func (h *HTTPServer) returnCar(w http.ResponseWriter, r *http.Request) {
	var req returnCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.CarID) == "" {
		writeError(w, http.StatusBadRequest, "car_id required")
		return
	}
	rec, err := h.svc.ReturnCar(r.Context(), req.CarID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPServer) listRentals(w http.ResponseWriter, r *http.Request) {
	rentals := h.svc.ActiveRentals()
	writeJSON(w, http.StatusOK, map[string]any{
		"rentals": rentals,
		"total":   len(rentals),
	})
}

func (h *HTTPServer) summary(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Summary()
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":     s,
		"utilization": h.svc.Utilization(),
	})
}

// writeDomainError 把注册表业务错误映射成 HTTP 状态码。
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateID),
		errors.Is(err, ErrCarUnavailable),
		errors.Is(err, ErrCarNotRented):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
