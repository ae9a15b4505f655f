package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/novalo/storefront/internal/adapter/commerce"
	"github.com/novalo/storefront/internal/core/domain"
	"github.com/novalo/storefront/internal/core/service"
)

// SessionCookie carries the credential token.
const SessionCookie = "userToken"

type HTTPHandler struct {
	carts    *service.CartManager
	auth     *service.AuthService
	catalog  *service.CatalogService
	wishlist *service.WishlistService
}

func NewHTTPHandler(carts *service.CartManager, auth *service.AuthService, catalog *service.CatalogService, wishlist *service.WishlistService) *HTTPHandler {
	return &HTTPHandler{
		carts:    carts,
		auth:     auth,
		catalog:  catalog,
		wishlist: wishlist,
	}
}

// Register mounts the API routes.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.healthCheck)

	mux.HandleFunc("POST /api/auth/signin", h.signIn)
	mux.HandleFunc("POST /api/auth/signup", h.signUp)
	mux.HandleFunc("POST /api/auth/signout", h.signOut)
	mux.HandleFunc("POST /api/auth/forgot-password", h.forgotPassword)
	mux.HandleFunc("POST /api/auth/verify-code", h.verifyResetCode)
	mux.HandleFunc("POST /api/auth/reset-password", h.resetPassword)
	mux.HandleFunc("GET /api/auth/me", h.me)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("GET /api/cart/events", h.cartEvents)
	mux.HandleFunc("POST /api/cart", h.addToCart)
	mux.HandleFunc("PUT /api/cart/{productId}", h.updateQuantity)
	mux.HandleFunc("DELETE /api/cart/{productId}", h.removeFromCart)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	mux.HandleFunc("POST /api/orders/checkout", h.checkout)
	mux.HandleFunc("GET /api/orders", h.listOrders)

	mux.HandleFunc("GET /api/wishlist", h.getWishlist)
	mux.HandleFunc("POST /api/wishlist", h.addToWishlist)
	mux.HandleFunc("DELETE /api/wishlist/{productId}", h.removeFromWishlist)

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("GET /api/categories/{id}", h.getCategory)
	mux.HandleFunc("GET /api/categories/{id}/subcategories", h.listSubcategories)
	mux.HandleFunc("GET /api/brands", h.listBrands)
	mux.HandleFunc("GET /api/brands/{id}", h.getBrand)
}

func atoiQuery(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNoCredential):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrBadToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrEmptyCart):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnknownCheckout):
		status = http.StatusBadRequest
	case errors.Is(err, commerce.ErrUpstream):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *HTTPHandler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- auth ---

type credentialsResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

func (h *HTTPHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *HTTPHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (h *HTTPHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	creds, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSessionCookie(w, creds.Token)
	writeJSON(w, http.StatusOK, credentialsResponse{Name: creds.Name, Email: creds.Email, Role: creds.Role})
}

func (h *HTTPHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Password   string `json:"password"`
		RePassword string `json:"rePassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	creds, err := h.auth.SignUp(r.Context(), domain.Registration{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   req.Password,
		RePassword: req.RePassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSessionCookie(w, creds.Token)
	writeJSON(w, http.StatusCreated, credentialsResponse{Name: creds.Name, Email: creds.Email, Role: creds.Role})
}

func (h *HTTPHandler) signOut(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token != "" {
		h.auth.SignOut(r.Context(), token)
		h.carts.Drop(token)
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	msg, err := h.auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (h *HTTPHandler) verifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetCode string `json:"resetCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.auth.VerifyResetCode(r.Context(), req.ResetCode); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	token, err := h.auth.ResetPassword(r.Context(), req.Email, req.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) me(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, service.ErrNoCredential)
		return
	}
	ident, err := service.DecodeIdentity(token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": ident.UserID, "name": ident.Name})
}

// --- cart ---

type cartLineView struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title,omitempty"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

type cartView struct {
	CartID         string         `json:"cartId"`
	Items          []cartLineView `json:"items"`
	TotalPrice     float64        `json:"totalPrice"`
	NumOfCartItems int            `json:"numOfCartItems"`
}

func newCartView(snap domain.CartSnapshot, count int) cartView {
	view := cartView{
		CartID:         snap.ID,
		Items:          make([]cartLineView, 0, len(snap.Lines)),
		TotalPrice:     snap.TotalPrice,
		NumOfCartItems: count,
	}
	for _, l := range snap.Lines {
		view.Items = append(view.Items, cartLineView{
			ProductID: l.ProductID,
			Title:     l.Title,
			ImageURL:  l.ImageURL,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return view
}

func (h *HTTPHandler) writeCart(w http.ResponseWriter, cart *service.CartService) {
	snap, count := cart.Snapshot()
	writeJSON(w, http.StatusOK, newCartView(snap, count))
}

func (h *HTTPHandler) getCart(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		// Fetching without a credential is a no-op: an empty cart.
		writeJSON(w, http.StatusOK, newCartView(domain.CartSnapshot{}, 0))
		return
	}
	cart := h.carts.Session(token)
	cart.Refresh(r.Context())
	h.writeCart(w, cart)
}

// cartEvents streams a server-sent event each time the session's cart
// state changes, so open views can re-render without polling.
func (h *HTTPHandler) cartEvents(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, service.ErrNoCredential)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "streaming unsupported"})
		return
	}

	cart := h.carts.Session(token)
	updates := cart.Subscribe()
	defer cart.Unsubscribe(updates)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-updates:
			w.Write([]byte("event: cart\ndata: changed\n\n"))
			flusher.Flush()
		}
	}
}

func (h *HTTPHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, service.ErrNoCredential)
		return
	}
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "productId is required"})
		return
	}
	cart := h.carts.Session(token)
	if err := cart.Add(r.Context(), req.ProductID); err != nil {
		writeError(w, err)
		return
	}
	h.writeCart(w, cart)
}

func (h *HTTPHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, service.ErrNoCredential)
		return
	}
	var req struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	cart := h.carts.Session(token)
	if err := cart.SetQuantity(r.Context(), r.PathValue("productId"), req.Count); err != nil {
		writeError(w, err)
		return
	}
	h.writeCart(w, cart)
}

func (h *HTTPHandler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, service.ErrNoCredential)
		return
	}
	cart := h.carts.Session(token)
	if err := cart.Remove(r.Context(), r.PathValue("productId")); err != nil {
		writeError(w, err)
		return
	}
	h.writeCart(w, cart)
}

func (h *HTTPHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, service.ErrNoCredential)
		return
	}
	cart := h.carts.Session(token)
	if err := cart.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.writeCart(w, cart)
}

// --- orders ---

func (h *HTTPHandler) checkout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, service.ErrNoCredential)
		return
	}
	var req struct {
		Method          string `json:"method"`
		ShippingAddress struct {
			Details string `json:"details"`
			City    string `json:"city"`
			Phone   string `json:"phone"`
		} `json:"shippingAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	mode := domain.CheckoutMode(req.Method)
	if mode != domain.CheckoutCash && mode != domain.CheckoutOnline {
		writeError(w, service.ErrUnknownCheckout)
		return
	}

	addr := domain.ShippingAddress{
		Details: req.ShippingAddress.Details,
		City:    req.ShippingAddress.City,
		Phone:   req.ShippingAddress.Phone,
	}

	cart := h.carts.Session(token)
	res, err := cart.Checkout(r.Context(), mode, addr, requestOrigin(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"paymentUrl": res.PaymentURL,
	})
}

// requestOrigin rebuilds the origin the browser reached us at; online
// checkout hands it to the payment page as the return address.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

type orderView struct {
	ID            string         `json:"id"`
	Number        int            `json:"number"`
	Items         []cartLineView `json:"items"`
	TotalPrice    float64        `json:"totalPrice"`
	PaymentMethod string         `json:"paymentMethod"`
	Paid          bool           `json:"paid"`
	Delivered     bool           `json:"delivered"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (h *HTTPHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, service.ErrNoCredential)
		return
	}
	orders, err := h.auth.Orders(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		v := orderView{
			ID:            o.ID,
			Number:        o.Number,
			Items:         make([]cartLineView, 0, len(o.Items)),
			TotalPrice:    o.TotalPrice,
			PaymentMethod: o.PaymentMethod,
			Paid:          o.Paid,
			Delivered:     o.Delivered,
			CreatedAt:     o.CreatedAt,
		}
		for _, l := range o.Items {
			v.Items = append(v.Items, cartLineView{
				ProductID: l.ProductID,
				Title:     l.Title,
				ImageURL:  l.ImageURL,
				UnitPrice: l.UnitPrice,
				Quantity:  l.Quantity,
			})
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

// --- wishlist ---

func (h *HTTPHandler) getWishlist(w http.ResponseWriter, r *http.Request) {
	products, err := h.wishlist.List(r.Context(), sessionToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *HTTPHandler) addToWishlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "productId is required"})
		return
	}
	ids, err := h.wishlist.Add(r.Context(), sessionToken(r), req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"productIds": ids})
}

func (h *HTTPHandler) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	ids, err := h.wishlist.Remove(r.Context(), sessionToken(r), r.PathValue("productId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"productIds": ids})
}

// --- catalog ---

func (h *HTTPHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.ProductQuery{
		Sort:       q.Get("sort"),
		Keyword:    q.Get("keyword"),
		CategoryID: q.Get("category"),
		BrandID:    q.Get("brand"),
	}
	query.Page, _ = atoiQuery(q.Get("page"))
	query.Limit, _ = atoiQuery(q.Get("limit"))

	products, page, err := h.catalog.Products(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"page":     page,
	})
}

func (h *HTTPHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *HTTPHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.Category(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *HTTPHandler) listSubcategories(w http.ResponseWriter, r *http.Request) {
	subcategories, err := h.catalog.Subcategories(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subcategories)
}

func (h *HTTPHandler) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.Brands(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (h *HTTPHandler) getBrand(w http.ResponseWriter, r *http.Request) {
	brand, err := h.catalog.Brand(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}
