package remote

import (
	"time"

	"shipdesk/senderterm/internal/models"
)

type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
}

const (
	DefaultTimeout    = 30 * time.Second
	DefaultRetryCount = 3
	DefaultRetryDelay = 2 * time.Second
)

// profileEnvelope is the body of GET /customers/me.
type profileEnvelope struct {
	Data *models.Profile `json:"data"`
}

// errorBody is what the service sends alongside a non-2xx status, when anything.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Status reports what the client last observed of the service.
type Status struct {
	BaseURL     string
	Reachable   bool
	LastStatus  int
	LastChecked time.Time
}
