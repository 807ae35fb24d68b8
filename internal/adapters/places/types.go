package places

// Provider wire types. Decoded at the boundary into explicit structs that
// fail closed: unknown or missing fields become zero values or nil, never
// coerced into the pipeline.

type textSearchResponse struct {
	Status        string             `json:"status"`
	Results       []textSearchResult `json:"results"`
	NextPageToken string             `json:"next_page_token"`
}

type textSearchResult struct {
	PlaceID          string `json:"place_id"`
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
}

type detailsResponse struct {
	Status string         `json:"status"`
	Result *detailsResult `json:"result"`
}

type detailsResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Phone            *string  `json:"formatted_phone_number"`
	Website          *string  `json:"website"`
	Rating           *float64 `json:"rating"`
	ReviewCount      *int     `json:"user_ratings_total"`
}
