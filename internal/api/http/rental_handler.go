package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"skyrent-backend/internal/domain"
	"skyrent-backend/internal/service"
	"skyrent-backend/internal/utils"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

// RegisterRoutes mounts the rental endpoints on an /api/v1 subrouter
func (h *RentalHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/rentals/quote", h.QuoteRental).Methods(http.MethodPost)
	router.HandleFunc("/rentals", h.CreateRental).Methods(http.MethodPost)
	router.HandleFunc("/rentals/{id}", h.GetRental).Methods(http.MethodGet)
	router.HandleFunc("/rentals/{id}", h.UpdateRental).Methods(http.MethodPatch)
	router.HandleFunc("/rentals/{id}/approve", h.ApproveRental).Methods(http.MethodPost)
	router.HandleFunc("/rentals/{id}/decline", h.DeclineRental).Methods(http.MethodPost)
	router.HandleFunc("/rentals/{id}/pay", h.MarkRentalPaid).Methods(http.MethodPost)
	router.HandleFunc("/rentals/{id}/activate", h.ActivateRental).Methods(http.MethodPost)
	router.HandleFunc("/rentals/{id}/complete", h.CompleteRental).Methods(http.MethodPost)
	router.HandleFunc("/rentals/{id}/verify", h.VerifyRentalPricing).Methods(http.MethodGet)
	router.HandleFunc("/owners/{ownerId}/rentals", h.ListOwnerRentals).Methods(http.MethodGet)
	router.HandleFunc("/renters/{renterId}/rentals", h.ListRenterRentals).Methods(http.MethodGet)
}

func (h *RentalHandler) QuoteRental(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.rentalSvc.QuoteRental(r.Context(), req.HourlyRate, req.EstimatedHours)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MapBreakdownToResponse(b))
}

func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	var req CreateRentalRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rt, err := h.rentalSvc.RequestRental(r.Context(), domain.RentalRequest{
		AircraftID:     req.AircraftID,
		OwnerID:        req.OwnerID,
		RenterID:       req.RenterID,
		HourlyRate:     req.HourlyRate,
		EstimatedHours: req.EstimatedHours,
		StartDate:      start,
		EndDate:        end,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/rentals/%s", rt.ID))
	writeJSON(w, http.StatusCreated, MapDomainRentalToResponse(rt))
}

func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	rt, err := h.rentalSvc.GetRental(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MapDomainRentalToResponse(rt))
}

func (h *RentalHandler) UpdateRental(w http.ResponseWriter, r *http.Request) {
	var req UpdateRentalRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := h.rentalSvc.UpdateRental(r.Context(), mux.Vars(r)["id"], domain.RentalPatch{
		ActualHours:     req.ActualHours,
		PayoutCompleted: req.PayoutCompleted,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MapDomainRentalToResponse(rt))
}

func (h *RentalHandler) ApproveRental(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.rentalSvc.ApproveRental(r.Context(), mux.Vars(r)["id"]))
}

func (h *RentalHandler) DeclineRental(w http.ResponseWriter, r *http.Request) {
	var req DeclineRentalRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r)(h.rentalSvc.DeclineRental(r.Context(), mux.Vars(r)["id"], req.Reason))
}

func (h *RentalHandler) MarkRentalPaid(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.rentalSvc.MarkRentalPaid(r.Context(), mux.Vars(r)["id"]))
}

func (h *RentalHandler) ActivateRental(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.rentalSvc.ActivateRental(r.Context(), mux.Vars(r)["id"]))
}

func (h *RentalHandler) CompleteRental(w http.ResponseWriter, r *http.Request) {
	var req CompleteRentalRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r)(h.rentalSvc.CompleteRental(r.Context(), mux.Vars(r)["id"], req.ActualHours))
}

func (h *RentalHandler) VerifyRentalPricing(w http.ResponseWriter, r *http.Request) {
	field, err := h.rentalSvc.VerifyRentalPricing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Consistent: field == "", Mismatch: field})
}

func (h *RentalHandler) ListOwnerRentals(w http.ResponseWriter, r *http.Request) {
	status, err := statusFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rentals, err := h.rentalSvc.ListOwnerRentals(r.Context(), mux.Vars(r)["ownerId"], status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MapDomainRentalsToResponse(rentals))
}

func (h *RentalHandler) ListRenterRentals(w http.ResponseWriter, r *http.Request) {
	status, err := statusFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rentals, err := h.rentalSvc.ListRenterRentals(r.Context(), mux.Vars(r)["renterId"], status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MapDomainRentalsToResponse(rentals))
}

// respond writes the outcome of a single-rental service call
func (h *RentalHandler) respond(w http.ResponseWriter, r *http.Request) func(*domain.Rental, error) {
	return func(rt *domain.Rental, err error) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, MapDomainRentalToResponse(rt))
	}
}

func statusFilter(r *http.Request) (domain.RentalStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return "", nil
	}
	status, ok := domain.ParseStatus(raw)
	if !ok {
		return "", fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, raw)
	}
	return status, nil
}
