package dealer

// createRequest is the payload for creating a dealer.
type createRequest struct {
	Name         string `json:"name" validate:"required"`
	Address      string `json:"address"`
	Number       string `json:"number"`
	Brand        string `json:"brand"`
	ShowroomLink string `json:"showroom_link"`
}

// updateRequest is a partial dealer update; absent fields keep their value.
type updateRequest struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	Number       *string `json:"number"`
	Brand        *string `json:"brand"`
	ShowroomLink *string `json:"showroom_link"`
}
