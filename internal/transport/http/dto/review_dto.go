package dto

import "time"

type ReviewCreateRequest struct {
	Rating     int     `json:"rating"`
	AuthorName string  `json:"author_name"`
	CommentHe  *string `json:"comment_he"`
	CommentRu  *string `json:"comment_ru"`
}

type ReviewCreatedResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type ReviewResponse struct {
	ID         int64     `json:"id"`
	Rating     int       `json:"rating"`
	AuthorName string    `json:"author_name"`
	CommentHe  *string   `json:"comment_he,omitempty"`
	CommentRu  *string   `json:"comment_ru,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewsResponse struct {
	Items []ReviewResponse `json:"items"`
}
