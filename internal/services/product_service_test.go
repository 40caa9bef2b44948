package services

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"testing"
	"time"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/models"
	"aneka-keramik/pkg/redis"
	"aneka-keramik/pkg/redis/redistest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memoryProductRepo ignores the pipeline and returns every stored product.
type memoryProductRepo struct {
	products   map[primitive.ObjectID]models.Product
	distinct   map[string][]interface{}
	aggregates int
	err        error
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: map[primitive.ObjectID]models.Product{}, distinct: map[string][]interface{}{}}
}

func (r *memoryProductRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *memoryProductRepo) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.ProductResponse, error) {
	r.aggregates++
	if r.err != nil {
		return nil, r.err
	}
	result := make([]models.ProductResponse, 0, len(r.products))
	for _, product := range r.products {
		result = append(result, models.NewProductResponse(product))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *memoryProductRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *memoryProductRepo) Distinct(ctx context.Context, field string) ([]interface{}, error) {
	return r.distinct[field], nil
}

func (r *memoryProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

func (r *memoryProductRepo) ExistsByName(ctx context.Context, name string, excludeID *primitive.ObjectID) (bool, error) {
	for id, product := range r.products {
		if product.Name == name && (excludeID == nil || *excludeID != id) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryProductRepo) Create(ctx context.Context, product *models.Product) error {
	r.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepo) Update(ctx context.Context, id primitive.ObjectID, product *models.Product) (*models.Product, error) {
	existing, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	product.Base = models.Base{ID: id, CreatedAt: existing.CreatedAt, UpdatedAt: product.UpdatedAt}
	r.products[id] = *product
	return product, nil
}

func (r *memoryProductRepo) SetFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	if v, ok := fields["is_best_seller"]; ok {
		product.IsBestSeller = v.(bool)
	}
	if v, ok := fields["is_new_arrivals"]; ok {
		product.IsNewArrivals = v.(bool)
	}
	if v, ok := fields["discount"]; ok {
		product.Discount = v.(float64)
	}
	r.products[id] = product
	return &product, nil
}

func (r *memoryProductRepo) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	delete(r.products, id)
	return &product, nil
}

func productRequest(name string) *dtos.ProductRequest {
	return &dtos.ProductRequest{
		Name:        name,
		Brand:       "Roman",
		Price:       100000,
		Discount:    20,
		TilesPerBox: 4,
		SizeWidth:   60,
		SizeHeight:  60,
		Application: []string{"Lantai"},
		Design:      "Modern",
		Color:       []string{"Putih"},
		Finishing:   "Glossy",
		Texture:     "Halus",
	}
}

func newProductFixture() (ProductService, *memoryProductRepo, *redistest.Memory) {
	repo := newMemoryProductRepo()
	store := redistest.NewMemory()
	return NewProductService(repo, redis.NewCache(store, time.Hour)), repo, store
}

func TestProductService_SearchIsCached(t *testing.T) {
	svc, repo, _ := newProductFixture()
	ctx := context.Background()
	_, err := svc.Create(ctx, productRequest("Granit Putih"))
	require.NoError(t, err)

	query := ProductQuery{Filters: ProductFilters{Color: []string{"Putih"}}, Limit: 10}
	first, err := svc.Search(ctx, query)
	require.NoError(t, err)
	second, err := svc.Search(ctx, query)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.aggregates)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Equal(t, 80000.0, second[0].FinalPrice)
}

func TestProductService_CacheOutageFallsBack(t *testing.T) {
	svc, repo, store := newProductFixture()
	ctx := context.Background()
	_, err := svc.Create(ctx, productRequest("Granit Putih"))
	require.NoError(t, err)

	store.Err = errors.New("redis down")
	products, err := svc.Search(ctx, ProductQuery{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, repo.aggregates)
}

func TestProductService_WritesInvalidateCaches(t *testing.T) {
	svc, _, store := newProductFixture()
	ctx := context.Background()
	created, err := svc.Create(ctx, productRequest("Granit Putih"))
	require.NoError(t, err)

	_, err = svc.Search(ctx, ProductQuery{Limit: 10})
	require.NoError(t, err)
	_, err = svc.Get(ctx, created.ID.Hex())
	require.NoError(t, err)
	_, err = svc.FilterOptions(ctx)
	require.NoError(t, err)
	assert.Len(t, store.Keys(), 3)

	_, err = svc.Update(ctx, created.ID.Hex(), productRequest("Granit Putih Baru"))
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestProductService_Validation(t *testing.T) {
	svc, _, _ := newProductFixture()
	ctx := context.Background()
	created, err := svc.Create(ctx, productRequest("Granit Putih"))
	require.NoError(t, err)
	other, err := svc.Create(ctx, productRequest("Granit Abu"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, productRequest("Granit Putih"))
	responseErr := requireResponseError(t, err)
	assert.Equal(t, http.StatusBadRequest, responseErr.Status)
	assert.Equal(t, "name", responseErr.Errors[0].Field)

	// renaming onto another product's name is rejected, keeping its own is not
	_, err = svc.Update(ctx, other.ID.Hex(), productRequest("Granit Putih"))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	_, err = svc.Update(ctx, created.ID.Hex(), productRequest("Granit Putih"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, "not-an-id")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	_, err = svc.Get(ctx, primitive.NewObjectID().Hex())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	_, err = svc.Delete(ctx, primitive.NewObjectID().Hex())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	deleted, err := svc.Delete(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Granit Putih", deleted.Name)
}

func TestProductService_ListPaginates(t *testing.T) {
	svc, _, _ := newProductFixture()
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.Create(ctx, productRequest(name))
		require.NoError(t, err)
	}

	_, page, err := svc.List(ctx, ProductQuery{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.Current)

	all, page, err := svc.List(ctx, ProductQuery{})
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Len(t, all, 3)
}

func TestProductService_FilterOptions(t *testing.T) {
	svc, repo, _ := newProductFixture()
	repo.distinct["specification.color"] = []interface{}{"Putih", "", "Abu-abu", 12}
	repo.distinct["specification.size"] = []interface{}{
		bson.M{"width": 60.0, "height": 60.0},
		bson.M{"width": 30.0, "height": 60.0},
	}

	options, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, options, len(filterOptionFields))

	byType := map[string][]dtos.FilterOption{}
	for _, option := range options {
		byType[option.Type] = option.Options
	}
	assert.Equal(t, []dtos.FilterOption{{Label: "Abu-abu", Value: "Abu-abu"}, {Label: "Putih", Value: "Putih"}}, byType["color"])
	assert.Equal(t, []dtos.FilterOption{{Label: "60x60", Value: "60x60"}, {Label: "30x60", Value: "30x60"}}, byType["size"])
	assert.Empty(t, byType["design"])

	values, err := svc.DistinctValues(context.Background(), "specification.color")
	require.NoError(t, err)
	assert.Equal(t, []string{"Abu-abu", "Putih"}, values)
}

func TestProductService_PartialUpdates(t *testing.T) {
	svc, _, store := newProductFixture()
	ctx := context.Background()
	created, err := svc.Create(ctx, productRequest("Granit Putih"))
	require.NoError(t, err)
	_, err = svc.Get(ctx, created.ID.Hex())
	require.NoError(t, err)

	flagged, err := svc.UpdateFlags(ctx, created.ID.Hex(), &dtos.ProductFlagsRequest{IsBestSeller: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, flagged.IsBestSeller)
	assert.False(t, flagged.IsNewArrivals)
	assert.Empty(t, store.Keys())

	_, err = svc.UpdateFlags(ctx, created.ID.Hex(), &dtos.ProductFlagsRequest{})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	half := float64Ptr(50)
	discounted, err := svc.UpdateDiscount(ctx, created.ID.Hex(), &dtos.ProductDiscountRequest{Discount: half})
	require.NoError(t, err)
	assert.Equal(t, 50000.0, discounted.FinalPrice)

	_, err = svc.UpdateDiscount(ctx, created.ID.Hex(), &dtos.ProductDiscountRequest{Discount: float64Ptr(120)})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	_, err = svc.UpdateDiscount(ctx, primitive.NewObjectID().Hex(), &dtos.ProductDiscountRequest{Discount: half})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func boolPtr(b bool) *bool {
	return &b
}

func float64Ptr(f float64) *float64 {
	return &f
}
