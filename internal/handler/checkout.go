package handler

import (
	"net/http"
	"strconv"

	"concerthub-api/internal/middleware"
	"concerthub-api/internal/service"
	"concerthub-api/pkg/apierror"
	"concerthub-api/pkg/response"
)

// CheckoutHandler drives the checkout of the caller's session.
type CheckoutHandler struct {
	state *service.State
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(state *service.State) *CheckoutHandler {
	return &CheckoutHandler{state: state}
}

// Get handles GET /api/v1/checkout?id=
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := 0
	if raw := r.URL.Query().Get("id"); raw != "" {
		var err error
		if id, err = strconv.Atoi(raw); err != nil || id <= 0 {
			response.Error(w, apierror.BadRequest("invalid concert id: "+raw))
			return
		}
	}

	c, err := h.state.Checkout.Begin(r.Context(), middleware.GetSessionID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, c)
}

// QuantityRequest is the body of PUT /api/v1/checkout/quantity.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetQuantity handles PUT /api/v1/checkout/quantity
func (h *CheckoutHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.state.Checkout.SetQuantity(r.Context(), middleware.GetSessionID(r.Context()), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, c)
}

// Submit handles POST /api/v1/checkout/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form service.PaymentForm
	htmlForm := isFormPost(r)

	if htmlForm {
		if err := r.ParseForm(); err != nil {
			response.Error(w, apierror.BadRequest("invalid form"))
			return
		}
		form.FullName = r.PostFormValue("full_name")
		form.Email = r.PostFormValue("email")
		form.CardNumber = r.PostFormValue("card_number")
		if q := r.PostFormValue("quantity"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil {
				response.Error(w, apierror.BadRequest("invalid quantity"))
				return
			}
			form.Quantity = n
		}
	} else if err := decodeJSON(r, &form); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.state.Checkout.Submit(r.Context(), middleware.GetSessionID(r.Context()), form)
	// Without an id the page shows the session's current checkout.
	if htmlForm && c != nil && c.Concert != nil {
		http.Redirect(w, r, "/checkout", http.StatusSeeOther)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, c)
}
