package transport

import (
	"net/http"

	"shop-api/internal/domain"
	"shop-api/internal/middleware"
	"shop-api/internal/repository"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler exposes maintenance endpoints over both stores
type AdminHandler struct {
	users    repository.UserRepository
	products repository.ProductRepository
	admin    service.AdminService
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(users repository.UserRepository, products repository.ProductRepository, admin service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		users:    users,
		products: products,
		admin:    admin,
		logger:   logger,
	}
}

// RegisterRoutes mounts /api/admin behind authentication and the admin check
func (h *AdminHandler) RegisterRoutes(r chi.Router, authn *middleware.Authenticator, admins []string) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authn.Required)
		r.Use(middleware.RequireAdmin(admins, h.logger))

		r.Get("/users", h.ListUsers)
		r.Delete("/users/{id}", h.DeleteUser)
		r.Get("/products", h.ListProducts)
		r.Delete("/products/{id}", h.DeleteProduct)
		r.Delete("/clear-all", h.ClearAll)
	})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}

	if users == nil {
		users = []*domain.User{}
	}
	middleware.RespondWithList(w, users, len(users))
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	deleted, err := h.users.Delete(r.Context(), id)
	if err != nil {
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}
	if !deleted {
		middleware.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	h.logger.Info("User deleted by admin", zap.Int64("user_id", id))
	middleware.RespondWithMessage(w, http.StatusOK, "User deleted successfully")
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetAll(r.Context())
	if err != nil {
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}

	if products == nil {
		products = []*domain.Product{}
	}
	middleware.RespondWithList(w, products, len(products))
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
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

	h.logger.Info("Product deleted by admin", zap.Int64("product_id", id))
	middleware.RespondWithMessage(w, http.StatusOK, "Product deleted successfully")
}

// ClearAll wipes the catalog and every account
func (h *AdminHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.ClearAll(r.Context())
	if err != nil {
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}

	h.logger.Warn("All data cleared",
		zap.Int64("products", result.Products),
		zap.Int64("users", result.Users),
	)
	middleware.RespondWithData(w, http.StatusOK, "All data cleared successfully", result)
}
