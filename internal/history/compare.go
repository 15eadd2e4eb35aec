package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ManifestChunk is a single change between two asset manifests.
type ManifestChunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// Comparison describes how a page's weight evolved between two stored runs.
type Comparison struct {
	BaseID          string          `json:"base_id"`
	HeadID          string          `json:"head_id"`
	URL             string          `json:"url"`
	FirstBytesDelta int64           `json:"first_bytes_delta"`
	FirstCO2Delta   float64         `json:"first_co2_delta_g"`
	GradeBefore     string          `json:"grade_before"`
	GradeAfter      string          `json:"grade_after"`
	ManifestChunks  []ManifestChunk `json:"manifest_chunks"`
}

// Compare diffs two stored measurements of the same page: byte and CO₂
// deltas plus which assets appeared or disappeared between the runs.
func (s *Store) Compare(ctx context.Context, baseID, headID string) (*Comparison, error) {
	base, err := s.Get(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("load base measurement: %w", err)
	}
	head, err := s.Get(ctx, headID)
	if err != nil {
		return nil, fmt.Errorf("load head measurement: %w", err)
	}
	if base.URL != head.URL {
		return nil, fmt.Errorf("measurements cover different pages: %s vs %s", base.URL, head.URL)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(base.AssetManifest, head.AssetManifest, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := make([]ManifestChunk, 0)
	for _, d := range diffs {
		var chunkType string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			chunkType = "added"
		case diffmatchpatch.DiffDelete:
			chunkType = "removed"
		case diffmatchpatch.DiffEqual:
			continue
		}
		if strings.TrimSpace(d.Text) != "" {
			chunks = append(chunks, ManifestChunk{Type: chunkType, Content: strings.TrimSpace(d.Text)})
		}
	}

	return &Comparison{
		BaseID:          base.ID,
		HeadID:          head.ID,
		URL:             base.URL,
		FirstBytesDelta: head.FirstBytes - base.FirstBytes,
		FirstCO2Delta:   head.FirstCO2 - base.FirstCO2,
		GradeBefore:     base.FirstGrade,
		GradeAfter:      head.FirstGrade,
		ManifestChunks:  chunks,
	}, nil
}
