package dto

type PhotoResponse struct {
	ID       int64  `json:"id"`
	Position int    `json:"position"`
	URL      string `json:"url"`
}

type PhotosListResponse struct {
	Items []PhotoResponse `json:"items"`
}
