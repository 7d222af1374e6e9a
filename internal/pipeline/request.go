package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/config"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
)

// requestMessage is the wire form of an analysis request. The site is decoded
// leniently by config.ParseSite so that bad thresholds fall back to defaults.
type requestMessage struct {
	RequestID string          `json:"request_id"`
	Site      json.RawMessage `json:"site"`
}

// JSONRequestDecoder implements RequestDecoder for JSON request messages.
type JSONRequestDecoder struct {
	dataDir string
}

// NewRequestDecoder creates a decoder resolving relative site folders against dataDir.
func NewRequestDecoder(dataDir string) *JSONRequestDecoder {
	return &JSONRequestDecoder{dataDir: dataDir}
}

// Decode parses a raw request. A missing request ID is taken from the
// request_id header, or generated.
func (d *JSONRequestDecoder) Decode(_ context.Context, raw domain.RawRequest) (domain.AnalysisRequest, error) {
	var msg requestMessage
	if err := json.Unmarshal(raw.Value, &msg); err != nil {
		return domain.AnalysisRequest{}, fmt.Errorf("decode analysis request: %w", err)
	}
	if len(bytes.TrimSpace(msg.Site)) == 0 || bytes.Equal(bytes.TrimSpace(msg.Site), []byte("null")) {
		return domain.AnalysisRequest{}, errors.New("analysis request has no site")
	}

	sc, err := config.ParseSite(msg.Site)
	if err != nil {
		return domain.AnalysisRequest{}, fmt.Errorf("decode analysis request site: %w", err)
	}
	if !filepath.IsAbs(sc.Folder) && d.dataDir != "" {
		sc.Folder = filepath.Join(d.dataDir, sc.Folder)
	}

	id := msg.RequestID
	if id == "" {
		id = raw.Headers["request_id"]
	}
	if id == "" {
		id = uuid.NewString()
	}
	return domain.AnalysisRequest{ID: id, Site: sc.Site()}, nil
}
