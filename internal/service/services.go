package service

import (
	"github.com/deppfellow/ctxword/internal/server"
)

// Services groups the business layer so the router gets a single value.
type Services struct {
	Synonym *SynonymService
}

func NewServices(s *server.Server) *Services {
	return &Services{
		Synonym: NewSynonymService(s),
	}
}
