package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/self-checkout/internal/model"
	"github.com/tuanvumaihuynh/self-checkout/internal/service"
)

const productsAddedMsg = "Products added/updated successfully!"

type ProductResponse struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func newProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		Name:     p.Name,
		Price:    p.Price,
		Quantity: p.Quantity,
	}
}

type catalogHandler struct {
	catalogSvc service.CatalogService
}

func newCatalogHandler(catalogSvc service.CatalogService) *catalogHandler {
	return &catalogHandler{
		catalogSvc: catalogSvc,
	}
}

func (h *catalogHandler) AddProducts(w http.ResponseWriter, r *http.Request) error {
	var params []service.UpsertProductParams
	if err := decodeJSON(r, &params); err != nil {
		return err
	}

	if _, err := h.catalogSvc.AddProducts(r.Context(), params); err != nil {
		return fmt.Errorf("catalog service add products: %w", err)
	}

	return writeJSON(w, http.StatusOK, MessageResponse{Message: productsAddedMsg})
}

func (h *catalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.catalogSvc.ListAllProducts(r.Context())
	if err != nil {
		return fmt.Errorf("catalog service list all products: %w", err)
	}

	items := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		items = append(items, newProductResponse(product))
	}

	return writeJSON(w, http.StatusOK, items)
}

func (h *catalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	product, err := h.catalogSvc.GetProduct(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		return fmt.Errorf("catalog service get product: %w", err)
	}

	return writeJSON(w, http.StatusOK, newProductResponse(product))
}
