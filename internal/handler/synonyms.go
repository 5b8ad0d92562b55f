package handler

import (
	"github.com/deppfellow/ctxword/internal/model"
	"github.com/deppfellow/ctxword/internal/server"
	"github.com/deppfellow/ctxword/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// SynonymHandler serves POST /synonyms.
type SynonymHandler struct {
	Handler
	synonymService *service.SynonymService
}

func NewSynonymHandler(s *server.Server, synonymService *service.SynonymService) *SynonymHandler {
	return &SynonymHandler{
		Handler:        NewHandler(s),
		synonymService: synonymService,
	}
}

// FindSynonyms returns ranked replacements for the tokens req.Lower..req.Upper.
func (h *SynonymHandler) FindSynonyms(c echo.Context, req *model.SynonymRequest) ([]byte, error) {
	if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
		txn.AddAttribute("synonym.limit", req.Limit)
		txn.AddAttribute("synonym.span_width", req.Upper-req.Lower+1)
		txn.AddAttribute("synonym.simple", req.Simple)
	}

	return h.synonymService.Find(c.Request().Context(), req)
}
