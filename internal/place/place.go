// Package place rewrites the document with rendered diagram images.
//
// Substitution is by originally recorded span, applied strictly
// rightmost-first so earlier spans are never shifted by a substitution of a
// later span. Violating that ordering silently corrupts unrelated text,
// which makes it the single most important correctness property here.
package place

import (
	"fmt"
	"strings"

	"github.com/avenal/go-llm2pdf/internal/render"
	"github.com/avenal/go-llm2pdf/internal/scan"
)

// canonicalFence is the marker whose presence is checked after substitution.
const canonicalFence = "```" + scan.CanonicalTag

// Result is the outcome of applying all substitutions.
type Result struct {
	Output   string
	Replaced int      // diagram blocks substituted with image references
	Dropped  int      // unrenderable artifacts removed
	Kept     int      // failed diagram blocks left as repaired source
	Warnings []string // placement inconsistencies; the document is still emitted
}

// ImageReference builds the substitution text for one rendered diagram:
// a stable sequence caption plus the image's bare filename. Path resolution
// is deferred to the downstream document renderer via its base-path
// parameter, so no absolute path is embedded.
func ImageReference(seq int, filename string) string {
	return fmt.Sprintf("\n![Mermaid Diagram %d](%s)\n", seq, filename)
}

// Apply produces the final document text from the repaired document, the
// scanned blocks (spans valid for doc), and the per-block rendering jobs
// keyed by block ID.
//
// Rendered jobs become image references; Failed jobs keep their repaired
// source block so the information is not lost; discard-flagged blocks are
// removed; everything else is untouched.
func Apply(doc string, blocks []scan.Block, jobs map[int]*render.Job) Result {
	var res Result

	failed := 0
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]

		switch {
		case b.Kind == scan.KindDiagram:
			job, ok := jobs[b.ID]
			if !ok || job.Status != render.StatusRendered {
				failed++
				res.Kept++
				continue
			}
			doc = doc[:b.Start] + ImageReference(job.Seq, job.ImageFile) + doc[b.End:]
			res.Replaced++

		case b.Discard:
			doc = doc[:b.Start] + doc[b.End:]
			res.Dropped++
		}
	}

	res.Output = doc

	// Every canonical fence left in the output must belong to a failed job;
	// any other remainder indicates a placement bug.
	if remaining := strings.Count(strings.ToLower(doc), canonicalFence); remaining != failed {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"placement inconsistency: %d canonical diagram fences remain, expected %d (failed jobs)",
			remaining, failed))
	}

	return res
}
