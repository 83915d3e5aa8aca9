package dto

import "time"

// BusinessResponse is the public shape of a listing. The submitter email
// never leaves the backend.
type BusinessResponse struct {
	ID             int64   `json:"id"`
	Slug           string  `json:"slug"`
	NameHe         string  `json:"name_he"`
	NameRu         string  `json:"name_ru"`
	DescriptionHe  *string `json:"description_he,omitempty"`
	DescriptionRu  *string `json:"description_ru,omitempty"`
	AddressHe      *string `json:"address_he,omitempty"`
	AddressRu      *string `json:"address_ru,omitempty"`
	OpeningHoursHe *string `json:"opening_hours_he,omitempty"`
	OpeningHoursRu *string `json:"opening_hours_ru,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Whatsapp       *string `json:"whatsapp,omitempty"`
	Website        *string `json:"website,omitempty"`
	Email          *string `json:"email,omitempty"`
	CategoryID     int64   `json:"category_id"`
	SubcategoryID  *int64  `json:"subcategory_id,omitempty"`
	NeighborhoodID int64   `json:"neighborhood_id"`
	CityID         int64   `json:"city_id"`
	IsVerified     bool    `json:"is_verified"`
	IsPinned       bool    `json:"is_pinned"`

	CreatedAt time.Time `json:"created_at"`
}

type BusinessListResponse struct {
	Items    []BusinessResponse `json:"items"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

type BusinessDetailResponse struct {
	Business BusinessResponse `json:"business"`
	Photos   []PhotoResponse  `json:"photos"`
	Reviews  []ReviewResponse `json:"reviews"`
}

// OwnerBusinessResponse extends the public shape with the moderation flags an
// owner needs to see about their own listing.
type OwnerBusinessResponse struct {
	BusinessResponse
	IsVisible bool `json:"is_visible"`
}

type OwnerBusinessListResponse struct {
	Items []OwnerBusinessResponse `json:"items"`
}
