package transport

import (
	"net/http"
	"strings"

	"shop-api/internal/domain"
	"shop-api/internal/middleware"
	"shop-api/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest is the payload for create and full-replace update
type ProductRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,max=500"`
}

// Fields converts the request into the store's mutable attribute set
func (req ProductRequest) Fields() domain.ProductFields {
	return domain.ProductFields{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}
}

// decodeProduct answers 400 itself when the body is unusable
func decodeProduct(w http.ResponseWriter, r *http.Request) (ProductRequest, bool) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err, "Please provide product name and price")
		return req, false
	}
	if strings.TrimSpace(req.Name) == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "Please provide product name and price")
		return req, false
	}
	return req, true
}

// ProductHandler serves the public catalog
type ProductHandler struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	logger     *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products repository.ProductRepository, categories repository.CategoryRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products:   products,
		categories: categories,
		logger:     logger,
	}
}

// RegisterRoutes mounts /api/products. Reads accept an optional token,
// writes require one.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authn *middleware.Authenticator) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/categories", h.Categories)

		r.Group(func(r chi.Router) {
			r.Use(authn.Optional)
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(authn.Required)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns every product, or those matching ?search= or ?category=.
// search takes precedence when both are given.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		products []*domain.Product
		err      error
	)

	query := r.URL.Query()
	switch {
	case query.Get("search") != "":
		products, err = h.products.Search(r.Context(), query.Get("search"))
	case query.Get("category") != "":
		products, err = h.products.GetByCategory(r.Context(), query.Get("category"))
	default:
		products, err = h.products.GetAll(r.Context())
	}
	if err != nil {
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}

	if products == nil {
		products = []*domain.Product{}
	}
	middleware.RespondWithList(w, products, len(products))
}

// Categories returns the distinct category names
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}

	if categories == nil {
		categories = []string{}
	}
	middleware.RespondWithList(w, categories, len(categories))
}

// Get returns a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}
	if product == nil {
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", product)
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.products.Create(r.Context(), req.Fields())
	if err != nil {
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	h.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int64("user_id", userID),
	)
	middleware.RespondWithData(w, http.StatusCreated, "Product created successfully", product)
}

// Update replaces all mutable attributes of a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.products.Update(r.Context(), id, req.Fields())
	if err != nil {
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}
	if product == nil {
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	h.logger.Info("Product updated", zap.Int64("product_id", id))
	middleware.RespondWithData(w, http.StatusOK, "Product updated successfully", product)
}

// Delete removes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	deleted, err := h.products.Delete(r.Context(), id)
	if err != nil {
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}
	if !deleted {
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	middleware.RespondWithMessage(w, http.StatusOK, "Product deleted successfully")
}
