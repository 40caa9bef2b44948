package models

type Size struct {
	Width  float64 `bson:"width" json:"width"`
	Height float64 `bson:"height" json:"height"`
}

type Specification struct {
	Size             Size     `bson:"size" json:"size"`
	Application      []string `bson:"application" json:"application"`
	Design           string   `bson:"design" json:"design"`
	Color            []string `bson:"color" json:"color"`
	Finishing        string   `bson:"finishing" json:"finishing"`
	Texture          string   `bson:"texture" json:"texture"`
	IsWaterResistant bool     `bson:"is_water_resistant" json:"isWaterResistant"`
	IsSlipResistant  bool     `bson:"is_slip_resistant" json:"isSlipResistant"`
}

type Product struct {
	Name          string        `bson:"name" json:"name"`
	Description   string        `bson:"description,omitempty" json:"description,omitempty"`
	Specification Specification `bson:"specification" json:"specification"`
	Brand         string        `bson:"brand" json:"brand"`
	Price         float64       `bson:"price" json:"price"`
	Discount      float64       `bson:"discount,omitempty" json:"discount,omitempty"` // percent, 0-100
	TilesPerBox   int           `bson:"tiles_per_box" json:"tilesPerBox"`
	IsBestSeller  bool          `bson:"is_best_seller" json:"isBestSeller"`
	IsNewArrivals bool          `bson:"is_new_arrivals" json:"isNewArrivals"`
	Image         string        `bson:"image,omitempty" json:"image,omitempty"`
	Recommended   []string      `bson:"recommended,omitempty" json:"recommended,omitempty"`
	Base          `bson:",inline"`
}

// ProductResponse is a product as shown to clients, with the discounted price.
type ProductResponse struct {
	Product    `bson:",inline"`
	FinalPrice float64 `bson:"final_price" json:"finalPrice"`
}

func NewProductResponse(product Product) ProductResponse {
	return ProductResponse{
		Product:    product,
		FinalPrice: FinalPrice(product.Price, product.Discount),
	}
}

func FinalPrice(price, discount float64) float64 {
	if discount == 0 {
		return price
	}
	return price - price*discount/100
}
