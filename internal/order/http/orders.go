package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/bitebank/internal/order/domain"
	"github.com/aussiebroadwan/bitebank/internal/order/service"
	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

// OrderRequest is the body of POST /orders and PUT /orders/{order_id}.
// Status defaults to ACCEPTED and order_date to the time of the request.
type OrderRequest struct {
	UserID    int64              `json:"user_id"`
	FullPrice float64            `json:"full_price"`
	Address   string             `json:"address"`
	OrderDate time.Time          `json:"order_date"`
	Status    string             `json:"status"`
	Items     []domain.OrderItem `json:"items"`
}

func (o OrderRequest) order() domain.Order {
	return domain.Order{
		UserID:    o.UserID,
		FullPrice: o.FullPrice,
		Address:   o.Address,
		OrderDate: o.OrderDate,
		Status:    domain.OrderStatus(o.Status),
		Items:     o.Items,
	}
}

// OrdersHandler serves the /orders routes.
type OrdersHandler struct {
	Service *service.OrderService
}

// List godoc
//
//	@Summary		List orders
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	domain.Order
//	@Router			/orders [get].
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.ListOrders(r.Context())
	if err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "list orders", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

// ListByUser godoc
//
//	@Summary		List user orders
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			user_id	path	int	true	"user id"
//	@Success		200		{array}	domain.Order
//	@Router			/orders/{user_id} [get].
func (h *OrdersHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	orders, err := h.Service.ListUserOrders(r.Context(), userID)
	if err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "list user orders", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

// Create godoc
//
//	@Summary		Create order
//	@Description	Creates an order and its items in one transaction.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		OrderRequest	true	"order"
//	@Success		201		{object}	domain.Order
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid request"
//	@Failure		404		{object}	authsdk.ErrorResponse	"meal does not exist"
//	@Router			/orders [post].
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	order, err := h.Service.CreateOrder(r.Context(), req.order())
	if err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "create order", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, order)
}

// Update godoc
//
//	@Summary		Update order
//	@Description	Replaces the order's fields and its whole item set.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			order_id	path		int				true	"order id"
//	@Param			request		body		OrderRequest	true	"order"
//	@Success		200			{object}	domain.Order
//	@Failure		404			{object}	authsdk.ErrorResponse	"order does not exist"
//	@Router			/orders/{order_id} [put].
func (h *OrdersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order_id")
	if err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	var req OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	o := req.order()
	o.ID = id
	order, err := h.Service.UpdateOrder(r.Context(), o)
	if err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "update order", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

// Delete godoc
//
//	@Summary		Delete order
//	@Tags			Orders
//	@Security		BearerAuth
//	@Param			order_id	path	int	true	"order id"
//	@Success		204
//	@Failure		404	{object}	authsdk.ErrorResponse	"order does not exist"
//	@Router			/orders/{order_id} [delete].
func (h *OrdersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order_id")
	if err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	if err := h.Service.DeleteOrder(r.Context(), id); err != nil {
		writeServiceError(w, slogx.FromContext(r.Context()), "delete order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
