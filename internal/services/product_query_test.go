package services

import (
	"testing"

	"aneka-keramik/internal/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildProductFilter_Empty(t *testing.T) {
	assert.Equal(t, bson.M{}, buildProductFilter(ProductFilters{}, ""))
}

func TestBuildProductFilter_AllFilters(t *testing.T) {
	maxPrice := 200000.0
	match := buildProductFilter(ProductFilters{
		Design:      []string{"Modern"},
		Color:       []string{"Putih", "Abu-abu"},
		Recommended: []string{"Kamar Mandi"},
		Size:        []models.Size{{Width: 60, Height: 60}, {Width: 30, Height: 60}},
		Price:       &PriceRange{Max: &maxPrice},
		Discounted:  true,
		BestSeller:  true,
	}, "")

	assert.Equal(t, bson.M{"$in": []string{"Modern"}}, match["specification.design"])
	assert.Equal(t, bson.M{"$in": []string{"Putih", "Abu-abu"}}, match["specification.color"])
	assert.Equal(t, bson.M{"$in": []string{"Kamar Mandi"}}, match["recommended"])
	assert.NotContains(t, match, "specification.texture")
	assert.Equal(t, bson.M{"$gte": 0.0, "$lte": 200000.0}, match["price"])
	assert.Equal(t, bson.M{"$gt": 0}, match["discount"])
	assert.Equal(t, true, match["is_best_seller"])
	assert.NotContains(t, match, "is_new_arrivals")

	or := match["$or"].(bson.A)
	assert.Len(t, or, 2)
	assert.Equal(t, bson.M{"specification.size.width": 30.0, "specification.size.height": 60.0}, or[1])
}

func TestBuildProductFilter_SearchIsEscaped(t *testing.T) {
	match := buildProductFilter(ProductFilters{}, "60x60 (promo)")
	or := match["$or"].(bson.A)
	assert.Len(t, or, 8)
	assert.Equal(t, bson.M{"name": bson.M{"$regex": `60x60 \(promo\)`, "$options": "i"}}, or[4])
}

func TestBuildProductPipeline(t *testing.T) {
	limited := buildProductPipeline(ProductQuery{Limit: 10, OrderBy: OrderByPriceAsc})
	assert.Len(t, limited, 4)
	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "final_price", Value: 1}}}}, limited[2])
	assert.Equal(t, bson.D{{Key: "$limit", Value: 10}}, limited[3])

	paged := buildProductPipeline(ProductQuery{Page: 3, PageSize: 12})
	assert.Len(t, paged, 5)
	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}}, paged[2])
	assert.Equal(t, bson.D{{Key: "$skip", Value: 24}}, paged[3])
	assert.Equal(t, bson.D{{Key: "$limit", Value: 12}}, paged[4])
}
