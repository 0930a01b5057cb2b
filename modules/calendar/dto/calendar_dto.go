package dto

const ProviderGoogle = "google"

// ConnectRequest saves a provider connection for the caller.
type ConnectRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"` // RFC3339
	Email        string `json:"email" validate:"required,email"`
}

// CalendarConnectionResponse describes one provider connection.
type CalendarConnectionResponse struct {
	ID            string `json:"id"`
	Provider      string `json:"provider"`
	CalendarEmail string `json:"calendar_email"`
	IsActive      bool   `json:"is_active"`
	ConnectedAt   string `json:"connected_at"`
}

// BusyIntervalResponse is one normalized busy window.
type BusyIntervalResponse struct {
	Start string `json:"start"` // RFC3339
	End   string `json:"end"`   // RFC3339
}

// FreeBusyResponse is the caller's busy set over a range.
type FreeBusyResponse struct {
	Email string                 `json:"email"`
	Busy  []BusyIntervalResponse `json:"busy"`
}
