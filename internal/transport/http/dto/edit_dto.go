package dto

import "time"

// EditRequest is a diff: absent fields keep their current values.
type EditRequest struct {
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
}

type EditCreatedResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type PendingEditResponse struct {
	ID             int64      `json:"id"`
	BusinessID     int64      `json:"business_id"`
	NameHe         *string    `json:"name_he,omitempty"`
	NameRu         *string    `json:"name_ru,omitempty"`
	DescriptionHe  *string    `json:"description_he,omitempty"`
	DescriptionRu  *string    `json:"description_ru,omitempty"`
	AddressHe      *string    `json:"address_he,omitempty"`
	AddressRu      *string    `json:"address_ru,omitempty"`
	OpeningHoursHe *string    `json:"opening_hours_he,omitempty"`
	OpeningHoursRu *string    `json:"opening_hours_ru,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Whatsapp       *string    `json:"whatsapp,omitempty"`
	Website        *string    `json:"website,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Status         string     `json:"status"`
	DecidedBy      *int64     `json:"decided_by,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type PendingEditsResponse struct {
	Items []PendingEditResponse `json:"items"`
}
