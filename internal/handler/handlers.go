package handler

import (
	"io/fs"

	"github.com/deppfellow/ctxword/internal/server"
	"github.com/deppfellow/ctxword/internal/service"
)

// Handlers groups all HTTP handlers so router setup passes one value around.
type Handlers struct {
	Health  *HealthHandler  // Health serves /status.
	OpenAPI *OpenAPIHandler // OpenAPI serves the API docs UI.
	Synonym *SynonymHandler // Synonym serves the synonym lookup.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services, assets fs.FS) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s, assets),
		Synonym: NewSynonymHandler(s, services.Synonym),
	}
}
