package dto

// AdminBusinessUpdateRequest patches a live business directly. Absent fields
// stay untouched.
type AdminBusinessUpdateRequest struct {
	NameHe         *string `json:"name_he"`
	NameRu         *string `json:"name_ru"`
	DescriptionHe  *string `json:"description_he"`
	DescriptionRu  *string `json:"description_ru"`
	AddressHe      *string `json:"address_he"`
	AddressRu      *string `json:"address_ru"`
	OpeningHoursHe *string `json:"opening_hours_he"`
	OpeningHoursRu *string `json:"opening_hours_ru"`
	Phone          *string `json:"phone"`
	Whatsapp       *string `json:"whatsapp"`
	Website        *string `json:"website"`
	Email          *string `json:"email"`
	CategoryID     *int64  `json:"category_id"`
	SubcategoryID  *int64  `json:"subcategory_id"`
	NeighborhoodID *int64  `json:"neighborhood_id"`
	IsVisible      *bool   `json:"is_visible"`
	IsVerified     *bool   `json:"is_verified"`
	IsPinned       *bool   `json:"is_pinned"`
}

// AdminBusinessCreateRequest inserts a listing directly, skipping the public
// submission queue.
type AdminBusinessCreateRequest struct {
	NameHe         string  `json:"name_he"`
	NameRu         string  `json:"name_ru"`
	DescriptionHe  *string `json:"description_he"`
	DescriptionRu  *string `json:"description_ru"`
	AddressHe      *string `json:"address_he"`
	AddressRu      *string `json:"address_ru"`
	OpeningHoursHe *string `json:"opening_hours_he"`
	OpeningHoursRu *string `json:"opening_hours_ru"`
	Phone          *string `json:"phone"`
	Whatsapp       *string `json:"whatsapp"`
	Website        *string `json:"website"`
	Email          *string `json:"email"`
	CategoryID     int64   `json:"category_id"`
	SubcategoryID  *int64  `json:"subcategory_id"`
	NeighborhoodID int64   `json:"neighborhood_id"`
	IsVisible      bool    `json:"is_visible"`
}

// AdminBusinessCreatedResponse mirrors the approve response shape.
type AdminBusinessCreatedResponse struct {
	OK         bool  `json:"ok"`
	BusinessID int64 `json:"business_id"`
}

type ReviewModerationRequest struct {
	Value bool `json:"value"`
}
