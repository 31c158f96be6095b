package transport

// BookingRequest is the public booking payload.
type BookingRequest struct {
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`
	ServiceID   int64  `json:"service_id"`
	EmployeeID  *int64 `json:"employee_id"`
	StartTime   string `json:"start_time"`
	Status      string `json:"status"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Token string `json:"token"`
}

// ErrorMeta points at the request field that failed validation.
type ErrorMeta struct {
	Field string `json:"field,omitempty"`
}

// ListMeta describes the page returned by list endpoints.
type ListMeta struct {
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
