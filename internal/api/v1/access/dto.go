package access

type AccessRequest struct {
	ServiceID string `json:"serviceId"`
}

type AccessResponse struct {
	URL string `json:"url"`
}
