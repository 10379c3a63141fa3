package http

import (
	"net/http"
	"strconv"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/service"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/view"
)

// Home handles GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	d, err := h.crm.AdminDashboard(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageDashboard, "Dashboard", d)
}

// UserPage handles GET /user/
func (h *Handler) UserPage(w http.ResponseWriter, r *http.Request) {
	d, err := h.crm.CustomerDashboard(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageUser, "My orders", d)
}

// Products handles GET /products/
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.crm.ListProducts(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageProducts, "Products", products)
}

// Customer handles GET /customers/{id}/
func (h *Handler) Customer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customer")
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	q := r.URL.Query()
	d, err := h.crm.CustomerDetail(r.Context(), id, service.OrderFilterInput{
		Product: q.Get("product"),
		Status:  q.Get("status"),
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageCustomer, "Customer", d)
}

// NewOrders handles GET /create_order/{id}/
func (h *Handler) NewOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customer")
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	form, err := h.crm.NewOrderBatch(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageOrderBatch, "Place orders", form)
}

// CreateOrders handles POST /create_order/{id}/
func (h *Handler) CreateOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customer")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := parseForm(w, r); err != nil {
		h.renderError(w, r, err)
		return
	}

	rows := make([]service.OrderRowInput, service.OrderBatchSize)
	for i := range rows {
		rows[i] = service.OrderRowInput{
			Product: r.PostForm.Get(service.RowField(i, "product")),
			Status:  r.PostForm.Get(service.RowField(i, "status")),
		}
	}

	form, err := h.crm.CreateOrders(r.Context(), id, rows)
	if _, ok := service.AsFormErrors(err); ok {
		h.render(w, r, http.StatusOK, view.PageOrderBatch, "Place orders", form)
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.redirect(w, r, "/")
}

// EditOrder handles GET /update_order/{id}/
func (h *Handler) EditOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order")
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	form, err := h.crm.EditOrder(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageOrderForm, "Update order", form)
}

// UpdateOrder handles POST /update_order/{id}/
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := parseForm(w, r); err != nil {
		h.renderError(w, r, err)
		return
	}

	form, err := h.crm.UpdateOrder(r.Context(), id, service.OrderInput{
		Customer: r.PostForm.Get("customer"),
		Product:  r.PostForm.Get("product"),
		Status:   r.PostForm.Get("status"),
		Note:     r.PostForm.Get("note"),
	})
	if _, ok := service.AsFormErrors(err); ok {
		h.render(w, r, http.StatusOK, view.PageOrderForm, "Update order", form)
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.redirect(w, r, "/")
}

// ConfirmDelete handles GET /delete_order/{id}/ and never mutates.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order")
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	order, err := h.crm.GetOrder(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageDelete, "Delete order #"+strconv.FormatInt(order.ID, 10), order)
}

// DeleteOrder handles POST /delete_order/{id}/
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order")
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if err := h.crm.DeleteOrder(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}
	h.redirect(w, r, "/")
}
