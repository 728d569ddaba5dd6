package dto

// Error represents a standard error response
type Error struct {
	Error string `json:"error" example:"error message"`
}

// QuotaError carries the numeric denial detail so clients can render an
// actionable "upgrade your plan" message.
type QuotaError struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason"`
	Used      int64  `json:"used,omitempty"`
	Max       int64  `json:"max,omitempty"`
	Required  int64  `json:"required,omitempty"`
	Available int64  `json:"available,omitempty"`
}
