package dto

import "time"

type SubmissionRequest struct {
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
	SubmitterEmail *string `json:"submitter_email"`
	CategoryID     int64   `json:"category_id"`
	SubcategoryID  *int64  `json:"subcategory_id"`
	NeighborhoodID int64   `json:"neighborhood_id"`
}

type SubmissionCreatedResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// PendingSubmissionResponse is the admin queue view. Unlike the public DTOs
// it carries the submitter email, the admins need it to contact people.
type PendingSubmissionResponse struct {
	ID             int64      `json:"id"`
	NameHe         string     `json:"name_he"`
	NameRu         string     `json:"name_ru"`
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
	SubmitterEmail *string    `json:"submitter_email,omitempty"`
	CategoryID     int64      `json:"category_id"`
	SubcategoryID  *int64     `json:"subcategory_id,omitempty"`
	NeighborhoodID int64      `json:"neighborhood_id"`
	Status         string     `json:"status"`
	DecidedBy      *int64     `json:"decided_by,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type PendingSubmissionsResponse struct {
	Items []PendingSubmissionResponse `json:"items"`
	Total int                         `json:"total"`
}

type ApproveSubmissionResponse struct {
	OK         bool  `json:"ok"`
	BusinessID int64 `json:"business_id"`
}
