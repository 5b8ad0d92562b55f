package service

import (
	"context"

	"github.com/deppfellow/ctxword/internal/errs"
	"github.com/deppfellow/ctxword/internal/model"
	"github.com/deppfellow/ctxword/internal/pipeline"
	"github.com/deppfellow/ctxword/internal/server"
	"github.com/pkg/errors"
)

// SynonymService finds contextual replacements through the shared pipeline.
type SynonymService struct {
	server *server.Server
}

func NewSynonymService(s *server.Server) *SynonymService {
	return &SynonymService{server: s}
}

// Find runs the lookup and returns the JSON document to send back: the full
// table in "table" orientation, or only the word column when req.Simple is set.
//
// Pipeline failures become a 502; a client that went away gets its context error back.
func (s *SynonymService) Find(ctx context.Context, req *model.SynonymRequest) ([]byte, error) {
	table, err := s.server.Pipeline.Find(ctx, req.Sentence, req.Span(), req.Limit)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}

		s.server.Logger.Error().
			Err(err).
			Str("span", req.Span().String()).
			Int("limit", req.Limit).
			Msg("synonym pipeline failed")

		return nil, errs.NewBadGatewayError("Synonym pipeline is unavailable")
	}

	if req.Simple {
		words, err := table.ColumnJSON(pipeline.WordColumn)
		if err != nil {
			return nil, errors.Wrap(err, "shape simple answer")
		}
		return words, nil
	}

	body, err := table.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "shape table answer")
	}
	return body, nil
}
