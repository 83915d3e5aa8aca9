package dto

type SubcategoryResponse struct {
	ID     int64  `json:"id"`
	Slug   string `json:"slug"`
	NameHe string `json:"name_he"`
	NameRu string `json:"name_ru"`
}

type CategoryResponse struct {
	ID            int64                 `json:"id"`
	Slug          string                `json:"slug"`
	NameHe        string                `json:"name_he"`
	NameRu        string                `json:"name_ru"`
	Subcategories []SubcategoryResponse `json:"subcategories"`
}

type CategoriesResponse struct {
	Items []CategoryResponse `json:"items"`
}

type NeighborhoodResponse struct {
	ID     int64  `json:"id"`
	Slug   string `json:"slug"`
	NameHe string `json:"name_he"`
	NameRu string `json:"name_ru"`
	CityHe string `json:"city_he"`
	CityRu string `json:"city_ru"`
}

type NeighborhoodsResponse struct {
	Items []NeighborhoodResponse `json:"items"`
}

type NearestNeighborhoodResponse struct {
	ID         int64   `json:"id"`
	NameHe     string  `json:"name_he"`
	NameRu     string  `json:"name_ru"`
	DistanceKM float64 `json:"distance_km"`
}
