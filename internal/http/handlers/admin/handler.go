package admin

import "github.com/whistledesk/internal/provider"

// Handler admin API handlers: session lifecycle, password reset and the issue dashboard
type Handler struct {
	*provider.Container
}

// New creates the admin handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
