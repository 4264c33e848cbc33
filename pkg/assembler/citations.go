package assembler

import (
	"strings"

	"github.com/jurisgraph/jurisgraph/pkg/normalize"
	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// resolveCitations emits the cites statements for one judgment. Each
// citation string probes the title index first: a hit is an internal
// cross-reference to a judgment in the current batch, a miss becomes an
// external citation stub. The probe order is the disambiguation policy — a
// citation never creates a stub for a title the batch already owns.
//
// A judgment citing its own title produces a self-referential cites
// statement; this mirrors how the source data is curated and is not
// special-cased.
func (a *Assembler) resolveCitations(rec *types.JudgmentRecord) {
	for _, citation := range rec.Citations {
		clean := normalize.Scalar(citation)
		if clean == "" {
			continue
		}

		if target, ok := a.titleIndex[strings.ToLower(clean)]; ok {
			a.append(types.Ref(rec.NodeID, types.PredCites, target))
			a.stats.TitleMatches++
			a.stats.CitationRelationships++
			continue
		}

		id, _ := a.builders.Citations.GetOrCreate(clean)
		a.append(types.Ref(rec.NodeID, types.PredCites, id))
		a.stats.CitationMatches++
		a.stats.CitationRelationships++
	}
}
