// Package parsing turns raw assistant response text into a validated
// ParsedResponse. Extraction escalates through direct parsing, repair and
// manual field scanning, stopping at the first strategy that yields a
// payload the schema accepts.
package parsing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jmorrow/designdeck/internal/extract"
	"github.com/jmorrow/designdeck/internal/schemas"
	"github.com/jmorrow/designdeck/internal/types"
)

// Strategy names the extraction strategy that produced a result.
type Strategy string

const (
	StrategyDirect   Strategy = "direct"
	StrategyRepaired Strategy = "repaired"
	StrategyScanned  Strategy = "scanned"
	StrategyNone     Strategy = "none"
)

// Result is the outcome of parsing one raw response. Failures are data, not
// panics: Err is set, Raw always carries the original text so callers can
// offer a view-raw affordance and an explicit retry.
type Result struct {
	OK       bool                  `json:"ok"`
	Response *types.ParsedResponse `json:"response,omitempty"`
	Err      *ParseError           `json:"-"`
	Error    string                `json:"error,omitempty"`
	Raw      string                `json:"raw,omitempty"`
	Strategy Strategy              `json:"strategy"`
}

// Parser extracts structured payloads from raw response text. It holds no
// mutable state and performs no I/O, so a single instance is safe for
// concurrent use.
type Parser struct {
	logger *zap.Logger
}

// NewParser returns a Parser logging through the given logger. A nil logger
// is replaced with a no-op one.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger.With(zap.String("component", "parser"))}
}

// Parse extracts a validated ParsedResponse from raw assistant output.
func (p *Parser) Parse(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return failure(raw, &ParseError{Kind: KindStructural, Message: "response text is empty"})
	}
	if !schemas.WithinSizeLimit(raw) {
		return failure(raw, &ParseError{
			Kind:    KindValidation,
			Message: fmt.Sprintf("response exceeds maximum size of %d characters", schemas.MaxResponseChars),
			Fields: []schemas.FieldError{{
				Field:   "(root)",
				Message: fmt.Sprintf("response exceeds maximum size of %d characters", schemas.MaxResponseChars),
			}},
		})
	}

	cleaned := extract.Clean(raw)

	resp, perr := p.decode(cleaned)
	if perr == nil {
		p.logger.Debug("parsed response directly", zap.Int("candidate_len", len(cleaned)))
		return success(raw, resp, StrategyDirect)
	}
	if perr.Kind == KindValidation {
		// The object decoded fine but violates the shape. Repair targets
		// broken structure and cannot make this payload acceptable.
		p.logger.Warn("response failed validation", zap.Error(perr))
		return failure(raw, perr)
	}

	lastErr := perr
	if repaired, changed := extract.Repair(cleaned); changed {
		resp, perr = p.decode(repaired)
		if perr == nil {
			p.logger.Info("parsed response after repair", zap.Int("candidate_len", len(repaired)))
			return success(raw, resp, StrategyRepaired)
		}
		lastErr = perr
	}

	if scanned, ok := extract.Scan(cleaned); ok {
		p.normalize(scanned)
		p.logger.Info("recovered response via field scan", zap.Bool("has_artifact", scanned.Artifact != nil))
		return success(raw, scanned, StrategyScanned)
	}

	if lastErr.Kind == KindStructural {
		lastErr = &ParseError{
			Kind:    KindStructural,
			Message: "no JSON object could be extracted from the response",
			Cause:   lastErr,
		}
	}
	p.logger.Warn("response could not be parsed", zap.Error(lastErr))
	return failure(raw, lastErr)
}

// decode runs a candidate string through the structural and schema gates
// and, when both pass, into the typed response with defaults applied.
func (p *Parser) decode(candidate string) (*types.ParsedResponse, *ParseError) {
	var probe any
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, &ParseError{Kind: KindStructural, Message: "candidate text is not valid JSON", Cause: err}
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, &ParseError{Kind: KindStructural, Message: "candidate text is not a JSON object"}
	}

	if err := schemas.ValidateResponse(candidate); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			return nil, &ParseError{
				Kind:    KindValidation,
				Message: "response does not match the expected shape",
				Fields:  ve.Errors,
				Cause:   err,
			}
		}
		return nil, &ParseError{Kind: KindValidation, Message: "schema validation failed", Cause: err}
	}

	var resp types.ParsedResponse
	if err := json.Unmarshal([]byte(candidate), &resp); err != nil {
		return nil, &ParseError{Kind: KindStructural, Message: "failed to decode response object", Cause: err}
	}
	p.normalize(&resp)
	return &resp, nil
}

// normalize applies defaults the schema leaves open.
func (p *Parser) normalize(resp *types.ParsedResponse) {
	if resp.Artifact != nil && resp.Artifact.Status == "" {
		resp.Artifact.Status = types.ParsedStatusDraft
	}
}

func success(raw string, resp *types.ParsedResponse, s Strategy) Result {
	return Result{OK: true, Response: resp, Raw: raw, Strategy: s}
}

func failure(raw string, err *ParseError) Result {
	return Result{OK: false, Err: err, Error: err.Error(), Raw: raw, Strategy: StrategyNone}
}
