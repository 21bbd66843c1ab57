package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/notice-registry/pkg/datenorm"
	"github.com/hazyhaar/notice-registry/pkg/kit"
	"github.com/hazyhaar/notice-registry/pkg/notice"
	"github.com/hazyhaar/notice-registry/pkg/pipeline"
	"github.com/hazyhaar/notice-registry/pkg/session"
)

// MaxDateValues caps one date normalization call.
const MaxDateValues = 1000

// errInvalid marks a request the caller must fix.
var errInvalid = errors.New("invalid request")

// Shared request/response types used by both HTTP and MCP transports.

type extractReq struct {
	Text           string `json:"text"`
	Limit          int    `json:"limit,omitempty"`
	Single         bool   `json:"single,omitempty"`
	NormalizeDates *bool  `json:"normalize_dates,omitempty"`
}

type extractResponse struct {
	Count   int             `json:"count"`
	Columns []string        `json:"columns"`
	Records []notice.Record `json:"records"`
}

type normalizeReq struct {
	Values []string `json:"values"`
	Policy string   `json:"policy,omitempty"`
}

type dateResult struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	OK     bool   `json:"ok"`
}

type normalizeResponse struct {
	Policy  string       `json:"policy"`
	Results []dateResult `json:"results"`
}

type sessionReq struct {
	ID    string
	Label string
	Text  string
}

type addResponse struct {
	ID      string `json:"id"`
	Notices int    `json:"notices"`
}

// Endpoints returns the core kit.Endpoints.

func extractEndpoint(p *pipeline.Pipeline) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*extractReq)
		if strings.TrimSpace(req.Text) == "" {
			return nil, fmt.Errorf("%w: text is empty", errInvalid)
		}
		if req.Limit < 0 {
			return nil, fmt.Errorf("%w: limit must be >= 0, got %d", errInvalid, req.Limit)
		}

		pp := *p
		if req.NormalizeDates != nil {
			pp.NormalizeDates = *req.NormalizeDates
		}

		var recs []notice.Record
		if req.Single {
			recs = []notice.Record{pp.Single(req.Text)}
		} else {
			recs = pp.Rows(req.Text, req.Limit)
		}
		if recs == nil {
			recs = []notice.Record{}
		}
		return extractResponse{Count: len(recs), Columns: notice.Columns, Records: recs}, nil
	}
}

func normalizeDatesEndpoint(n *datenorm.Normalizer) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*normalizeReq)
		if len(req.Values) == 0 {
			return nil, fmt.Errorf("%w: values array is empty", errInvalid)
		}
		if len(req.Values) > MaxDateValues {
			return nil, fmt.Errorf("%w: too many values (max %d, got %d)", errInvalid, MaxDateValues, len(req.Values))
		}
		policy, err := datenorm.ParsePolicy(req.Policy)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalid, err)
		}

		results := make([]dateResult, len(req.Values))
		for i, v := range req.Values {
			_, ok := n.Canonical(v)
			results[i] = dateResult{Input: v, Output: n.Normalize(v, policy), OK: ok}
		}
		return normalizeResponse{Policy: policy.String(), Results: results}, nil
	}
}

func createSessionEndpoint(store *session.Store) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*sessionReq)
		return store.Create(req.Label)
	}
}

func addNoticeEndpoint(store *session.Store) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*sessionReq)
		if strings.TrimSpace(req.Text) == "" {
			return nil, fmt.Errorf("%w: text is empty", errInvalid)
		}
		n, err := store.Add(req.ID, req.Text)
		if err != nil {
			return nil, err
		}
		return addResponse{ID: req.ID, Notices: n}, nil
	}
}

func sessionRecordsEndpoint(store *session.Store, p *pipeline.Pipeline) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*sessionReq)
		texts, err := store.Texts(req.ID)
		if err != nil {
			return nil, err
		}
		recs := p.Texts(texts)
		if recs == nil {
			recs = []notice.Record{}
		}
		return extractResponse{Count: len(recs), Columns: notice.Columns, Records: recs}, nil
	}
}

func deleteSessionEndpoint(store *session.Store) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*sessionReq)
		if err := store.Delete(req.ID); err != nil {
			return nil, err
		}
		return map[string]string{"id": req.ID, "status": "deleted"}, nil
	}
}
