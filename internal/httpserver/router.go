package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"freshcart/internal/catalog"
	"freshcart/internal/engine"
)

// Server exposes the commerce engine over a JSON API. Cart routes issue
// optimistic commands; catalog routes drive the session's query view.
type Server struct {
	engine *engine.Engine
}

func NewServer(e *engine.Engine) *Server {
	return &Server{engine: e}
}

// Router builds the HTTP route table.
func (s *Server) Router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /cart", s.handleGetCart)
	mux.HandleFunc("POST /cart/items", s.handleAddItem)
	mux.HandleFunc("PUT /cart/items/{id}", s.handleUpdateItem)
	mux.HandleFunc("DELETE /cart/items/{id}", s.handleRemoveItem)
	mux.HandleFunc("GET /cart/items/{id}/status", s.handleItemStatus)
	mux.HandleFunc("DELETE /cart", s.handleClearCart)
	mux.HandleFunc("POST /cart/coupon", s.handleApplyCoupon)
	mux.HandleFunc("DELETE /cart/coupon", s.handleRemoveCoupon)
	mux.HandleFunc("PUT /cart/delivery-slot", s.handleDeliverySlot)

	mux.HandleFunc("GET /catalog", s.handleCatalog)
	mux.HandleFunc("POST /catalog/filter", s.handleSetFilter)
	mux.HandleFunc("POST /catalog/search", s.handleSetSearch)
	mux.HandleFunc("PUT /catalog/page", s.handleSetPage)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- cart ----

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Cart())
}

type addItemRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.engine.AddItem(r.Context(), req.ProductID, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Cart())
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.engine.UpdateQuantity(r.Context(), productID, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Cart())
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	s.engine.RemoveItem(r.Context(), productID)
	writeJSON(w, http.StatusOK, s.engine.Cart())
}

func (s *Server) handleItemStatus(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":     productID,
		"status": s.engine.ItemState(productID),
	})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearCart(r.Context())
	writeJSON(w, http.StatusOK, s.engine.Cart())
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.engine.ApplyCoupon(r.Context(), req.Code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Cart())
}

func (s *Server) handleRemoveCoupon(w http.ResponseWriter, r *http.Request) {
	s.engine.RemoveCoupon(r.Context())
	writeJSON(w, http.StatusOK, s.engine.Cart())
}

type deliverySlotRequest struct {
	// nil fee reverts to the threshold-based policy
	Fee *float64 `json:"fee"`
}

func (s *Server) handleDeliverySlot(w http.ResponseWriter, r *http.Request) {
	var req deliverySlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.engine.SetDeliverySlotFee(req.Fee)
	writeJSON(w, http.StatusOK, s.engine.Cart())
}

// ---- catalog ----

type catalogResponse struct {
	Items      []catalog.Product `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalItems int               `json:"total_items"`
	TotalPages int               `json:"total_pages"`
}

func (s *Server) writeCatalog(w http.ResponseWriter) {
	res := s.engine.Catalog()
	writeJSON(w, http.StatusOK, catalogResponse{
		Items:      res.Items,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalItems: res.TotalItems,
		TotalPages: res.TotalPages,
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeCatalog(w)
}

type filterRequest struct {
	Category    *string         `json:"category"`
	PriceMin    *float64        `json:"price_min"`
	PriceMax    *float64        `json:"price_max"`
	Organic     *bool           `json:"organic"`
	InStockOnly *bool           `json:"in_stock_only"`
	MinRating   *float64        `json:"min_rating"`
	SortBy      *catalog.SortBy `json:"sort_by"`
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.engine.SetFilter(catalog.CriteriaPatch{
		Category:    req.Category,
		PriceMin:    req.PriceMin,
		PriceMax:    req.PriceMax,
		Organic:     req.Organic,
		InStockOnly: req.InStockOnly,
		MinRating:   req.MinRating,
		SortBy:      req.SortBy,
	})
	s.writeCatalog(w)
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSetSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.engine.SetSearchQuery(req.Query)
	s.writeCatalog(w)
}

type pageRequest struct {
	Page int `json:"page"`
}

func (s *Server) handleSetPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.engine.SetPage(req.Page)
	s.writeCatalog(w)
}
