package notification

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

type ToastListResponse struct {
	Toasts     []Toast `json:"toasts"`
	TotalCount int     `json:"totalCount"`
}
