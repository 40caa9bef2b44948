package services

import (
	"regexp"

	"aneka-keramik/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxPriceFilter = 999999999999

type ProductOrderBy string

const (
	OrderByPriceAsc  ProductOrderBy = "price_asc"
	OrderByPriceDesc ProductOrderBy = "price_desc"
	OrderByNameAsc   ProductOrderBy = "name_asc"
	OrderByNameDesc  ProductOrderBy = "name_desc"
)

type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ProductFilters narrows a catalog query. Empty lists are ignored.
type ProductFilters struct {
	Design      []string      `json:"design,omitempty"`
	Texture     []string      `json:"texture,omitempty"`
	Finishing   []string      `json:"finishing,omitempty"`
	Color       []string      `json:"color,omitempty"`
	Application []string      `json:"application,omitempty"`
	Recommended []string      `json:"recommended,omitempty"`
	Size        []models.Size `json:"size,omitempty"`
	Price       *PriceRange   `json:"price,omitempty"`
	Discounted  bool          `json:"discounted,omitempty"`
	BestSeller  bool          `json:"bestSeller,omitempty"`
	NewArrivals bool          `json:"newArrivals,omitempty"`
}

type ProductQuery struct {
	Filters     ProductFilters `json:"filters"`
	SearchQuery string         `json:"searchQuery,omitempty"`
	OrderBy     ProductOrderBy `json:"orderBy,omitempty"`
	Limit       int            `json:"limit,omitempty"`
	// Page and PageSize switch List into paginated mode when Page > 0
	Page     int `json:"page,omitempty"`
	PageSize int `json:"pageSize,omitempty"`
}

// buildProductFilter turns filters and a free-text search into a $match document.
// Sizes and search terms are alternatives ($or), every other filter must hold.
func buildProductFilter(filters ProductFilters, searchQuery string) bson.M {
	match := bson.M{}

	inFilters := []struct {
		field  string
		values []string
	}{
		{"specification.design", filters.Design},
		{"specification.texture", filters.Texture},
		{"specification.color", filters.Color},
		{"specification.finishing", filters.Finishing},
		{"specification.application", filters.Application},
		{"recommended", filters.Recommended},
	}
	for _, f := range inFilters {
		if len(f.values) > 0 {
			match[f.field] = bson.M{"$in": f.values}
		}
	}

	if filters.Discounted {
		match["discount"] = bson.M{"$gt": 0}
	}
	if filters.BestSeller {
		match["is_best_seller"] = true
	}
	if filters.NewArrivals {
		match["is_new_arrivals"] = true
	}
	if filters.Price != nil {
		lower, upper := float64(0), float64(maxPriceFilter)
		if filters.Price.Min != nil {
			lower = *filters.Price.Min
		}
		if filters.Price.Max != nil {
			upper = *filters.Price.Max
		}
		match["price"] = bson.M{"$gte": lower, "$lte": upper}
	}

	var or bson.A
	for _, size := range filters.Size {
		or = append(or, bson.M{
			"specification.size.width":  size.Width,
			"specification.size.height": size.Height,
		})
	}
	if searchQuery != "" {
		regex := bson.M{"$regex": regexp.QuoteMeta(searchQuery), "$options": "i"}
		for _, field := range []string{
			"specification.design", "specification.texture", "specification.color", "specification.finishing",
			"name", "brand", "description", "recommended",
		} {
			or = append(or, bson.M{field: regex})
		}
	}
	if len(or) > 0 {
		match["$or"] = or
	}

	return match
}

func sortStage(orderBy ProductOrderBy) bson.D {
	var sort bson.D
	switch orderBy {
	case OrderByPriceAsc:
		sort = bson.D{{Key: "final_price", Value: 1}}
	case OrderByPriceDesc:
		sort = bson.D{{Key: "final_price", Value: -1}}
	case OrderByNameAsc:
		sort = bson.D{{Key: "name", Value: 1}}
	case OrderByNameDesc:
		sort = bson.D{{Key: "name", Value: -1}}
	default:
		sort = bson.D{{Key: "created_at", Value: -1}}
	}
	return bson.D{{Key: "$sort", Value: sort}}
}

// finalPriceStage adds final_price = price - price*discount/100.
var finalPriceStage = bson.D{{Key: "$addFields", Value: bson.M{
	"final_price": bson.M{"$subtract": bson.A{
		"$price",
		bson.M{"$divide": bson.A{
			bson.M{"$multiply": bson.A{"$price", bson.M{"$ifNull": bson.A{"$discount", 0}}}},
			100,
		}},
	}},
}}}

func buildProductPipeline(query ProductQuery) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildProductFilter(query.Filters, query.SearchQuery)}},
		finalPriceStage,
		sortStage(query.OrderBy),
	}
	if query.Page > 0 && query.PageSize > 0 {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: (query.Page - 1) * query.PageSize}},
			bson.D{{Key: "$limit", Value: query.PageSize}},
		)
	} else if query.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: query.Limit}})
	}
	return pipeline
}
