package public

import "github.com/whistledesk/internal/provider"

// Handler unauthenticated endpoints used by reporters and the USSD gateway
type Handler struct {
	*provider.Container
}

// New creates the public handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
