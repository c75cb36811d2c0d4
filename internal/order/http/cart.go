package http

import (
	"net/http"

	"github.com/aussiebroadwan/bitebank/internal/order/domain"
	"github.com/aussiebroadwan/bitebank/internal/order/service"
	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

// CartItemRequest is the body of POST /shopping_cart and
// PUT /shopping_cart/{item_id}.
type CartItemRequest struct {
	UserID int64 `json:"user_id"`
	MealID int64 `json:"meal_id"`
	Amount int   `json:"amount"`
}

// CartHandler serves the /shopping_cart routes.
type CartHandler struct {
	Service *service.OrderService
}

// List godoc
//
//	@Summary		Get cart
//	@Tags			Cart
//	@Produce		json
//	@Security		BearerAuth
//	@Param			user_id	path	int	true	"user id"
//	@Success		200		{array}	domain.CartItem
//	@Router			/shopping_cart/{user_id} [get].
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	items, err := h.Service.ListCart(r.Context(), userID)
	if err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "list cart", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

// Create godoc
//
//	@Summary		Add to cart
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CartItemRequest	true	"cart item"
//	@Success		201		{object}	domain.CartItem
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid request"
//	@Failure		404		{object}	authsdk.ErrorResponse	"meal does not exist"
//	@Router			/shopping_cart [post].
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	item, err := h.Service.AddToCart(r.Context(), domain.CartItem{
		UserID: req.UserID,
		MealID: req.MealID,
		Amount: req.Amount,
	})
	if err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "add to cart", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, item)
}

// Update godoc
//
//	@Summary		Update cart item
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			item_id	path		int				true	"cart item id"
//	@Param			request	body		CartItemRequest	true	"cart item"
//	@Success		200		{object}	domain.CartItem
//	@Failure		404		{object}	authsdk.ErrorResponse	"not found"
//	@Router			/shopping_cart/{item_id} [put].
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "item_id")
	if err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	var req CartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	item, err := h.Service.UpdateCartItem(r.Context(), domain.CartItem{
		ID:     id,
		UserID: req.UserID,
		MealID: req.MealID,
		Amount: req.Amount,
	})
	if err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "update cart item", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

// Delete godoc
//
//	@Summary		Remove cart item
//	@Tags			Cart
//	@Security		BearerAuth
//	@Param			item_id	path	int	true	"cart item id"
//	@Success		204
//	@Failure		404	{object}	authsdk.ErrorResponse	"not found"
//	@Router			/shopping_cart/{item_id} [delete].
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "item_id")
	if err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	if err := h.Service.RemoveFromCart(r.Context(), id); err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "remove cart item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
