package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/models"
	"aneka-keramik/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	fallbackPaginationPage = 1
	fallbackPaginationSize = 10
)

type ProductHandler struct {
	productService services.ProductService
}

func NewProductHandler(productService services.ProductService) *ProductHandler {
	if productService == nil {
		logrus.Fatal("Product service cannot be nil")
	}
	return &ProductHandler{
		productService: productService,
	}
}

// @Summary List products
// @Description Filters accept comma separated or repeated values; size uses WxH
// @Produce json
// @Success 200 {object} dtos.Response
func (h *ProductHandler) List(c *gin.Context) {
	query := parseProductQuery(c)

	products, pagination, err := h.productService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    products,
		Page:    pagination,
	})
}

func (h *ProductHandler) FilterOptions(c *gin.Context) {
	options, err := h.productService.FilterOptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    options,
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    product,
	})
}

// @Summary Create product
// @Accept json
// @Produce json
// @Param product body dtos.ProductRequest true "Product"
// @Success 201 {object} dtos.Response
func (h *ProductHandler) Create(c *gin.Context) {
	var req dtos.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dtos.Response{
		Success: true,
		Data:    product,
	})
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req dtos.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    product,
	})
}

func (h *ProductHandler) UpdateFlags(c *gin.Context) {
	var req dtos.ProductFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.UpdateFlags(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    product,
	})
}

func (h *ProductHandler) UpdateDiscount(c *gin.Context) {
	var req dtos.ProductDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.UpdateDiscount(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    product,
	})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	product, err := h.productService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    product,
	})
}

func parseProductQuery(c *gin.Context) services.ProductQuery {
	query := services.ProductQuery{
		Filters: services.ProductFilters{
			Design:      queryList(c, "design"),
			Texture:     queryList(c, "texture"),
			Finishing:   queryList(c, "finishing"),
			Color:       queryList(c, "color"),
			Application: queryList(c, "application"),
			Recommended: queryList(c, "recommended"),
			Size:        querySizes(c, "size"),
			BestSeller:  c.Query("bestSeller") == "true",
			NewArrivals: c.Query("newArrivals") == "true",
			Discounted:  c.Query("discounted") == "true",
		},
		SearchQuery: strings.TrimSpace(c.Query("search")),
		OrderBy:     services.ProductOrderBy(c.Query("order_by")),
	}

	rawPage, hasPage := c.GetQuery("pagination_page")
	rawSize, hasSize := c.GetQuery("pagination_size")
	if hasPage || hasSize {
		query.Page = positiveIntOr(rawPage, fallbackPaginationPage)
		query.PageSize = positiveIntOr(rawSize, fallbackPaginationSize)
	}
	return query
}

// queryList collects ?key=a,b and ?key=a&key=b into one list.
func queryList(c *gin.Context, key string) []string {
	var values []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}

// querySizes parses "60x60" entries; malformed entries are skipped.
func querySizes(c *gin.Context, key string) []models.Size {
	var sizes []models.Size
	for _, raw := range queryList(c, key) {
		parts := strings.Split(strings.ToLower(raw), "x")
		if len(parts) != 2 {
			continue
		}
		width, errW := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		height, errH := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errW != nil || errH != nil {
			continue
		}
		sizes = append(sizes, models.Size{Width: width, Height: height})
	}
	return sizes
}

func positiveIntOr(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
