package draft

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vantage-erp/vantage-erp/internal/orders"
	"github.com/vantage-erp/vantage-erp/internal/platform/httpx"
)

// Handler exposes the draft cart over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the cart handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes attaches cart routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.createCart)
	r.Route("/{cartID}", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Put("/filters", h.setFilters)
		r.Put("/highlight", h.setHighlight)
		r.Post("/items", h.addItem)
		r.Patch("/items/{productID}", h.updateItem)
		r.Delete("/items/{productID}", h.removeItem)
		r.Post("/submit", h.submit)
	})
}

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	store := h.service.CreateCart(r.Context())
	httpx.JSON(w, http.StatusCreated, newCartResponse(store))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	store := h.service.Cart(r.Context(), chi.URLParam(r, "cartID"))
	httpx.JSON(w, http.StatusOK, newCartResponse(store))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.service.DropCart(r.Context(), chi.URLParam(r, "cartID"))
	httpx.NoContent(w)
}

func (h *Handler) setFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed body"))
		return
	}
	store := h.service.Cart(r.Context(), chi.URLParam(r, "cartID"))
	filters := store.SetFilters(Filters{BrandID: req.BrandID, CategoryID: req.CategoryID})
	httpx.JSON(w, http.StatusOK, filters)
}

func (h *Handler) setHighlight(w http.ResponseWriter, r *http.Request) {
	store := h.service.Cart(r.Context(), chi.URLParam(r, "cartID"))

	var req highlightRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed body"))
		return
	}
	if req.ProductID == 0 {
		store.Highlight(nil)
		httpx.NoContent(w)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	store.Highlight(&Product{ID: req.ProductID, Name: req.ProductName, PriceUSD: req.PriceUSD})
	httpx.JSON(w, http.StatusOK, newCartResponse(store))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	store := h.service.Cart(r.Context(), chi.URLParam(r, "cartID"))
	store.AddItem(r.Context(), LineItem{
		ProductID:    req.ProductID,
		ProductName:  req.ProductName,
		Quantity:     req.Quantity,
		UnitPriceUSD: req.UnitPriceUSD,
	})
	httpx.JSON(w, http.StatusOK, newCartResponse(store))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid product id", httpx.ErrValidation))
		return
	}

	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	store := h.service.Cart(r.Context(), chi.URLParam(r, "cartID"))
	if _, ok := store.UpdateItem(r.Context(), productID, ItemPatch{
		Quantity:     req.Quantity,
		UnitPriceUSD: req.UnitPriceUSD,
	}); !ok {
		httpx.RespondError(w, fmt.Errorf("%w: product %d not in cart", httpx.ErrNotFound, productID))
		return
	}
	httpx.JSON(w, http.StatusOK, newCartResponse(store))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid product id", httpx.ErrValidation))
		return
	}

	store := h.service.Cart(r.Context(), chi.URLParam(r, "cartID"))
	store.RemoveItem(r.Context(), productID)
	httpx.JSON(w, http.StatusOK, newCartResponse(store))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	cartID := chi.URLParam(r, "cartID")
	order, err := h.service.Submit(r.Context(), cartID, req.Dealer)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyDraft):
			httpx.RespondError(w, fmt.Errorf("%w: nothing to submit", httpx.ErrValidation))
		case errors.Is(err, orders.ErrRejected):
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		default:
			h.logger.Error("draft submit failed", slog.String("cart_id", cartID), slog.Any("error", err))
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUpstream, "order service unavailable"))
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}
