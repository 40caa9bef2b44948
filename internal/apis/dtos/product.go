package dtos

type ProductRequest struct {
	Name             string   `json:"name" binding:"required"`
	Description      string   `json:"description"`
	Brand            string   `json:"brand" binding:"required"`
	Price            float64  `json:"price" binding:"required,gt=0"`
	Discount         float64  `json:"discount" binding:"gte=0,lte=100"`
	TilesPerBox      int      `json:"tilesPerBox" binding:"required,gt=0"`
	SizeWidth        float64  `json:"sizeWidth" binding:"required,gt=0"`
	SizeHeight       float64  `json:"sizeHeight" binding:"required,gt=0"`
	Application      []string `json:"application" binding:"required,min=1"`
	Design           string   `json:"design" binding:"required"`
	Color            []string `json:"color" binding:"required,min=1"`
	Finishing        string   `json:"finishing" binding:"required"`
	Texture          string   `json:"texture" binding:"required"`
	IsWaterResistant bool     `json:"isWaterResistant"`
	IsSlipResistant  bool     `json:"isSlipResistant"`
	IsBestSeller     bool     `json:"isBestSeller"`
	IsNewArrivals    bool     `json:"isNewArrivals"`
	Recommended      []string `json:"recommended"`
}

type ProductFlagsRequest struct {
	IsBestSeller  *bool `json:"isBestSeller"`
	IsNewArrivals *bool `json:"isNewArrivals"`
}

type ProductDiscountRequest struct {
	Discount *float64 `json:"discount"`
}

type FilterOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type ProductFilterOptions struct {
	Type    string         `json:"type"`
	Options []FilterOption `json:"options"`
}
