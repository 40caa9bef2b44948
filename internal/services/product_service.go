package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/constants"
	"aneka-keramik/internal/models"
	"aneka-keramik/internal/repositories"
	"aneka-keramik/internal/utils"
	"aneka-keramik/pkg/redis"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogService is the part of the catalog the recommendation engine depends on.
type CatalogService interface {
	Search(ctx context.Context, query ProductQuery) ([]models.ProductResponse, error)
	DistinctValues(ctx context.Context, field string) ([]string, error)
}

type ProductService interface {
	CatalogService
	Get(ctx context.Context, id string) (*models.ProductResponse, error)
	List(ctx context.Context, query ProductQuery) ([]models.ProductResponse, *dtos.Pagination, error)
	FilterOptions(ctx context.Context) ([]dtos.ProductFilterOptions, error)
	Create(ctx context.Context, req *dtos.ProductRequest) (*models.ProductResponse, error)
	Update(ctx context.Context, id string, req *dtos.ProductRequest) (*models.ProductResponse, error)
	UpdateFlags(ctx context.Context, id string, req *dtos.ProductFlagsRequest) (*models.ProductResponse, error)
	UpdateDiscount(ctx context.Context, id string, req *dtos.ProductDiscountRequest) (*models.ProductResponse, error)
	Delete(ctx context.Context, id string) (*models.ProductResponse, error)
}

// filterOptionFields are the specification fields offered as catalog filters.
var filterOptionFields = []string{"design", "application", "texture", "finishing", "color", "size"}

type productService struct {
	productRepo repositories.ProductRepository
	cache       *redis.Cache
	logger      *logrus.Entry
}

func NewProductService(productRepo repositories.ProductRepository, cache *redis.Cache) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       cache,
		logger:      logrus.WithField("service", "product"),
	}
}

func (s *productService) Search(ctx context.Context, query ProductQuery) ([]models.ProductResponse, error) {
	query.Page, query.PageSize = 0, 0
	return redis.GetOrSet(ctx, s.cache, listCacheKey(query), func(ctx context.Context) ([]models.ProductResponse, error) {
		return s.productRepo.Aggregate(ctx, buildProductPipeline(query))
	})
}

// DistinctValues returns the distinct non-empty string values stored under field.
func (s *productService) DistinctValues(ctx context.Context, field string) ([]string, error) {
	values, err := s.productRepo.Distinct(ctx, field)
	if err != nil {
		return nil, err
	}
	return stringValues(values), nil
}

func (s *productService) Get(ctx context.Context, id string) (*models.ProductResponse, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, BadRequest(constants.MsgProductInvalidID)
	}

	return redis.GetOrSet(ctx, s.cache, fmt.Sprintf(constants.CacheKeyProductByID, id), func(ctx context.Context) (*models.ProductResponse, error) {
		product, err := s.productRepo.FindByID(ctx, objectID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, NotFound(constants.MsgProductNotFound)
		}
		response := models.NewProductResponse(*product)
		return &response, nil
	})
}

type productPage struct {
	Products   []models.ProductResponse `json:"products"`
	Pagination *dtos.Pagination         `json:"pagination,omitempty"`
}

func (s *productService) List(ctx context.Context, query ProductQuery) ([]models.ProductResponse, *dtos.Pagination, error) {
	if query.Page <= 0 {
		products, err := s.Search(ctx, query)
		return products, nil, err
	}
	if query.PageSize <= 0 {
		query.PageSize = 10
	}

	page, err := redis.GetOrSet(ctx, s.cache, listCacheKey(query), func(ctx context.Context) (productPage, error) {
		products, err := s.productRepo.Aggregate(ctx, buildProductPipeline(query))
		if err != nil {
			return productPage{}, err
		}
		total, err := s.productRepo.Count(ctx, buildProductFilter(query.Filters, query.SearchQuery))
		if err != nil {
			return productPage{}, err
		}
		return productPage{
			Products: products,
			Pagination: &dtos.Pagination{
				Size:       query.PageSize,
				Total:      total,
				TotalPages: int(math.Ceil(float64(total) / float64(query.PageSize))),
				Current:    query.Page,
			},
		}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return page.Products, page.Pagination, nil
}

func (s *productService) FilterOptions(ctx context.Context) ([]dtos.ProductFilterOptions, error) {
	return redis.GetOrSet(ctx, s.cache, constants.CacheKeyFilterOptions, func(ctx context.Context) ([]dtos.ProductFilterOptions, error) {
		options := make([]dtos.ProductFilterOptions, 0, len(filterOptionFields))
		for _, field := range filterOptionFields {
			values, err := s.productRepo.Distinct(ctx, "specification."+field)
			if err != nil {
				return nil, err
			}
			var labels []string
			if field == "size" {
				labels = sizeLabels(values)
			} else {
				labels = stringValues(values)
			}
			entries := make([]dtos.FilterOption, 0, len(labels))
			for _, label := range labels {
				entries = append(entries, dtos.FilterOption{Label: label, Value: label})
			}
			options = append(options, dtos.ProductFilterOptions{Type: field, Options: entries})
		}
		return options, nil
	})
}

func (s *productService) Create(ctx context.Context, req *dtos.ProductRequest) (*models.ProductResponse, error) {
	taken, err := s.productRepo.ExistsByName(ctx, req.Name, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, NewValidationError(dtos.ValidationErrorItem{Field: "name", Message: constants.MsgProductNameTaken})
	}

	product := productFromRequest(req)
	product.Base = models.NewBase()
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, "")
	response := models.NewProductResponse(*product)
	return &response, nil
}

func (s *productService) Update(ctx context.Context, id string, req *dtos.ProductRequest) (*models.ProductResponse, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, BadRequest(constants.MsgProductInvalidID)
	}

	taken, err := s.productRepo.ExistsByName(ctx, req.Name, &objectID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, NewValidationError(dtos.ValidationErrorItem{Field: "name", Message: constants.MsgProductNameTaken})
	}

	product := productFromRequest(req)
	product.UpdatedAt = time.Now()
	updated, err := s.productRepo.Update(ctx, objectID, product)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, NotFound(constants.MsgProductNotFound)
	}

	s.invalidate(ctx, id)
	response := models.NewProductResponse(*updated)
	return &response, nil
}

func (s *productService) UpdateFlags(ctx context.Context, id string, req *dtos.ProductFlagsRequest) (*models.ProductResponse, error) {
	fields := bson.M{}
	if req.IsBestSeller != nil {
		fields["is_best_seller"] = *req.IsBestSeller
	}
	if req.IsNewArrivals != nil {
		fields["is_new_arrivals"] = *req.IsNewArrivals
	}
	if len(fields) == 0 {
		return nil, NewValidationError(dtos.ValidationErrorItem{Field: "flags", Message: constants.MsgProductNoFlags})
	}
	return s.setFields(ctx, id, fields)
}

func (s *productService) UpdateDiscount(ctx context.Context, id string, req *dtos.ProductDiscountRequest) (*models.ProductResponse, error) {
	if req.Discount == nil || *req.Discount < 0 || *req.Discount > 100 {
		return nil, NewValidationError(dtos.ValidationErrorItem{Field: "discount", Message: constants.MsgProductDiscountRange})
	}
	return s.setFields(ctx, id, bson.M{"discount": *req.Discount})
}

func (s *productService) setFields(ctx context.Context, id string, fields bson.M) (*models.ProductResponse, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, BadRequest(constants.MsgProductInvalidID)
	}

	fields["updated_at"] = time.Now()
	updated, err := s.productRepo.SetFields(ctx, objectID, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, NotFound(constants.MsgProductNotFound)
	}

	s.invalidate(ctx, id)
	response := models.NewProductResponse(*updated)
	return &response, nil
}

func (s *productService) Delete(ctx context.Context, id string) (*models.ProductResponse, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, BadRequest(constants.MsgProductInvalidID)
	}

	deleted, err := s.productRepo.Delete(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, NotFound(constants.MsgProductNotFound)
	}

	s.invalidate(ctx, id)
	response := models.NewProductResponse(*deleted)
	return &response, nil
}

// invalidate drops every cached read a catalog write can make stale.
func (s *productService) invalidate(ctx context.Context, id string) {
	keys := []string{constants.CacheKeyFilterOptions}
	if id != "" {
		keys = append(keys, fmt.Sprintf(constants.CacheKeyProductByID, id))
	}
	s.cache.Delete(ctx, keys...)
	s.cache.DeleteByPattern(ctx, constants.CacheKeyProductListPattern)
	s.logger.WithField("product_id", id).Debug("Invalidated product caches")
}

func productFromRequest(req *dtos.ProductRequest) *models.Product {
	return &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Specification: models.Specification{
			Size:             models.Size{Width: req.SizeWidth, Height: req.SizeHeight},
			Application:      req.Application,
			Design:           req.Design,
			Color:            req.Color,
			Finishing:        req.Finishing,
			Texture:          req.Texture,
			IsWaterResistant: req.IsWaterResistant,
			IsSlipResistant:  req.IsSlipResistant,
		},
		Brand:         req.Brand,
		Price:         req.Price,
		Discount:      req.Discount,
		TilesPerBox:   req.TilesPerBox,
		IsBestSeller:  req.IsBestSeller,
		IsNewArrivals: req.IsNewArrivals,
		Recommended:   req.Recommended,
	}
}

func listCacheKey(query ProductQuery) string {
	params, _ := json.Marshal(query)
	return fmt.Sprintf(constants.CacheKeyProductList, utils.MD5Hash(string(params)))
}

func stringValues(values []interface{}) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if str, ok := value.(string); ok && str != "" {
			result = append(result, str)
		}
	}
	sort.Strings(result)
	return result
}

// sizeLabels renders distinct size sub-documents as "WxH".
func sizeLabels(values []interface{}) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		raw, err := bson.Marshal(value)
		if err != nil {
			continue
		}
		var size models.Size
		if err := bson.Unmarshal(raw, &size); err != nil || size.Width == 0 || size.Height == 0 {
			continue
		}
		result = append(result, fmt.Sprintf("%gx%g", size.Width, size.Height))
	}
	return result
}
