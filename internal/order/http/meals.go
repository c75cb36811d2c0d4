package http

import (
	"net/http"

	"github.com/aussiebroadwan/bitebank/internal/order/domain"
	"github.com/aussiebroadwan/bitebank/internal/order/service"
	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

// MealRequest is the body of POST /meals and PUT /meals/{meal_id}. The image
// path is only read on create.
type MealRequest struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	BloodType string  `json:"blood_type"`
	Available bool    `json:"available"`
	ImagePath string  `json:"image_path"`
}

func (m MealRequest) meal() domain.Meal {
	return domain.Meal{
		Name:      m.Name,
		Price:     m.Price,
		BloodType: domain.BloodType(m.BloodType),
		Available: m.Available,
		ImagePath: m.ImagePath,
	}
}

// MealsHandler serves the /meals routes.
type MealsHandler struct {
	Service *service.OrderService
}

// List godoc
//
//	@Summary		List meals
//	@Tags			Meals
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		domain.Meal
//	@Failure		401	{object}	authsdk.ErrorResponse	"missing or invalid token"
//	@Router			/meals [get].
func (h *MealsHandler) List(w http.ResponseWriter, r *http.Request) {
	meals, err := h.Service.ListMeals(r.Context())
	if err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "list meals", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, meals)
}

// Get godoc
//
//	@Summary		Get meal
//	@Tags			Meals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			meal_id	path		int	true	"meal id"
//	@Success		200		{object}	domain.Meal
//	@Failure		404		{object}	authsdk.ErrorResponse	"meal does not exist"
//	@Router			/meals/{meal_id} [get].
func (h *MealsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "meal_id")
	if err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	meal, err := h.Service.GetMeal(r.Context(), id)
	if err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "get meal", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, meal)
}

// Create godoc
//
//	@Summary		Create meal
//	@Tags			Meals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		MealRequest	true	"meal"
//	@Success		201		{object}	domain.Meal
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid request"
//	@Router			/meals [post].
func (h *MealsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req MealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	meal, err := h.Service.CreateMeal(r.Context(), req.meal())
	if err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "create meal", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, meal)
}

// Update godoc
//
//	@Summary		Update meal
//	@Description	Replaces name, price, blood type and availability.
//	@Tags			Meals
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			meal_id	path		int			true	"meal id"
//	@Param			request	body		MealRequest	true	"meal"
//	@Success		200		{object}	domain.Meal
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid request"
//	@Failure		404		{object}	authsdk.ErrorResponse	"meal does not exist"
//	@Router			/meals/{meal_id} [put].
func (h *MealsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "meal_id")
	if err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	var req MealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	m := req.meal()
	m.ID = id
	meal, err := h.Service.UpdateMeal(r.Context(), m)
	if err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "update meal", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, meal)
}

// Delete godoc
//
//	@Summary		Delete meal
//	@Tags			Meals
//	@Security		BearerAuth
//	@Param			meal_id	path	int	true	"meal id"
//	@Success		204
//	@Failure		404	{object}	authsdk.ErrorResponse	"meal does not exist"
//	@Failure		409	{object}	authsdk.ErrorResponse	"meal is still referenced"
//	@Router			/meals/{meal_id} [delete].
func (h *MealsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "meal_id")
	if err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	if err := h.Service.DeleteMeal(r.Context(), id); err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "delete meal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
