package controller

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/http/middleware"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/service"
)

// ProductService is the product use case consumed by ProductController.
type ProductService interface {
	CreateProduct(ctx context.Context, owner string, in service.ProductInput) (*model.Product, error)
	ListProducts(ctx context.Context, owner, description string, categories []string) ([]*model.Product, error)
	UpdateProduct(ctx context.Context, owner string, id uuid.UUID, in service.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, owner string, id uuid.UUID) (*model.Product, error)
	Categories(ctx context.Context, owner string) ([]string, error)
}

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ProductRequest represents the request body for creating or replacing a product.
type ProductRequest struct {
	Description       string   `json:"description" binding:"required"`
	ImageURL          string   `json:"image_url"`
	Quantity          int      `json:"quantity" binding:"gte=0"`
	SuggestedQuantity int      `json:"suggested_quantity" binding:"gte=0"`
	Price             float64  `json:"price" binding:"gte=0"`
	Categories        []string `json:"categories"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Description:       r.Description,
		ImageURL:          r.ImageURL,
		Quantity:          r.Quantity,
		SuggestedQuantity: r.SuggestedQuantity,
		PriceBRL:          r.Price,
		Categories:        r.Categories,
	}
}

// ProductResponse represents the response body for a product. Price is in BRL.
type ProductResponse struct {
	ID                string   `json:"id"`
	Owner             string   `json:"owner"`
	Description       string   `json:"description"`
	ImageURL          string   `json:"image_url"`
	Quantity          int      `json:"quantity"`
	SuggestedQuantity int      `json:"suggested_quantity"`
	Price             float64  `json:"price"`
	PriceUSD          float64  `json:"price_usd"`
	Status            string   `json:"status"`
	Categories        []string `json:"categories"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	createdProduct, err := pc.productService.CreateProduct(c.Request.Context(), middleware.Owner(c), req.toInput())
	if err != nil {
		respondError(c, err, "create product")
		return
	}

	c.JSON(http.StatusCreated, toProductResponse(createdProduct))
}

// ListProductsRequest represents the query parameters for listing products.
type ListProductsRequest struct {
	Description string `form:"description"`
	Categories  string `form:"categories"`
}

// ListProducts handles the HTTP GET request for listing the caller's products.
func (pc *ProductController) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	var categories []string
	if req.Categories != "" {
		categories = strings.Split(req.Categories, ",")
	}

	products, err := pc.productService.ListProducts(c.Request.Context(), middleware.Owner(c), req.Description, categories)
	if err != nil {
		respondError(c, err, "list products")
		return
	}

	productResponses := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		productResponses = append(productResponses, toProductResponse(product))
	}

	c.JSON(http.StatusOK, productResponses)
}

// UpdateProduct handles the HTTP PUT request replacing the editable fields of a product.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := pc.productService.UpdateProduct(c.Request.Context(), middleware.Owner(c), id, req.toInput())
	if err != nil {
		respondError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, toProductResponse(updated))
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	deleted, err := pc.productService.DeleteProduct(c.Request.Context(), middleware.Owner(c), id)
	if err != nil {
		respondError(c, err, "delete product")
		return
	}

	c.JSON(http.StatusOK, toProductResponse(deleted))
}

// ListCategories handles the HTTP GET request for the caller's distinct categories.
func (pc *ProductController) ListCategories(c *gin.Context) {
	categories, err := pc.productService.Categories(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		respondError(c, err, "list categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, categories)
}

func productID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return uuid.Nil, false
	}
	return id, true
}

func toProductResponse(product *model.Product) ProductResponse {
	categories := product.Categories
	if categories == nil {
		categories = []string{}
	}
	return ProductResponse{
		ID:                product.ID.String(),
		Owner:             product.Owner,
		Description:       product.Description,
		ImageURL:          product.ImageURL,
		Quantity:          product.Quantity,
		SuggestedQuantity: product.SuggestedQuantity,
		Price:             product.PriceBRL,
		PriceUSD:          product.PriceUSD,
		Status:            string(product.Status),
		Categories:        categories,
		CreatedAt:         product.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         product.UpdatedAt.Format(time.RFC3339),
	}
}
