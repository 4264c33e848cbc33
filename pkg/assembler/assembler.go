// Package assembler turns a batch of source documents into the statement set
// for one processing run. Work happens in two passes: pass 1 normalizes every
// record, assigns judgment identifiers and completes the title index; pass 2
// emits judgment statements and relationship statements per record. The
// ordering is an invariant, not an optimization — citation resolution in
// pass 2 is only correct once the title index covers the whole batch.
package assembler

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jurisgraph/jurisgraph/pkg/normalize"
	"github.com/jurisgraph/jurisgraph/pkg/registry"
	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// untitled is the placeholder the normalizer assigns to records with no
// usable title. It never enters the title index.
const untitled = "Untitled"

// Assembler owns the per-run state: records, title index, builders and
// statement accumulator. Construct fresh per run; not safe for concurrent
// use.
type Assembler struct {
	log      *slog.Logger
	builders *registry.Builders

	titleIndex map[string]string
	records    []types.JudgmentRecord
	newDocIDs  map[string]bool

	statements []types.Statement
	stats      types.Stats

	// stampTime, when non-zero, adds a processed_timestamp literal to every
	// judgment (incremental runs carry it, full regenerates do not).
	stampTime time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithTimestamp makes the assembler stamp each judgment with the given
// processing time.
func WithTimestamp(t time.Time) Option {
	return func(a *Assembler) { a.stampTime = t }
}

// New creates an Assembler over the given builder set.
func New(builders *registry.Builders, log *slog.Logger, opts ...Option) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	a := &Assembler{
		log:        log,
		builders:   builders,
		titleIndex: make(map[string]string),
		newDocIDs:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Collect is pass 1: normalize every document, assign judgment identifiers,
// and build the title index. Must complete for the whole batch before Emit
// runs for any record. Documents that cannot be identified are logged and
// skipped; they never abort the batch.
func (a *Assembler) Collect(docs []types.SourceDocument) {
	a.log.Info("first pass: collecting judgment records", "documents", len(docs))

	for _, doc := range docs {
		rec, err := normalize.Record(doc, a.log)
		if err != nil {
			a.log.Error("skipping unidentifiable document", "store_id", doc.StoreID, "error", err)
			continue
		}

		id, created := a.builders.Judgments.GetOrCreate(rec.DocID)
		rec.NodeID = id
		if created {
			a.newDocIDs[rec.DocID] = true
		}
		a.records = append(a.records, rec)

		// First-registered title wins; case folding collisions resolve to
		// the earliest judgment in batch order.
		if rec.Title != "" && rec.Title != untitled {
			lower := strings.ToLower(rec.Title)
			if _, ok := a.titleIndex[lower]; !ok {
				a.titleIndex[lower] = id
			}
		}
	}

	a.stats.TotalJudgments = len(a.records)
	a.log.Info("collected judgment records", "judgments", a.stats.TotalJudgments, "titles_indexed", len(a.titleIndex))
}

// Emit is pass 2: for every collected record, in input order, emit the
// judgment's descriptive statements and then its relationship statements.
// The relationship kinds are mutually independent; citations run last only
// because they are the ones that need the completed title index.
func (a *Assembler) Emit() {
	a.log.Info("second pass: emitting judgment and relationship statements")

	for i := range a.records {
		rec := &a.records[i]
		a.emitJudgment(rec)
		a.guard(rec, "judge", func() { a.emitJudges(rec) })
		a.guard(rec, "advocate", func() { a.emitAdvocates(rec) })
		a.guard(rec, "outcome", func() { a.emitOutcome(rec) })
		a.guard(rec, "case_duration", func() { a.emitCaseDuration(rec) })
		a.guard(rec, "citation", func() { a.resolveCitations(rec) })
	}
}

// guard confines a failure in one relationship kind to that kind and that
// judgment: the batch always continues.
func (a *Assembler) guard(rec *types.JudgmentRecord, kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("error processing relationships",
				"kind", kind, "judgment", rec.Title, "error", fmt.Sprint(r))
		}
	}()
	fn()
}

// emitJudgment writes the judgment's descriptive statements. A doc_id that
// repeats within the batch keeps its identifier but only describes the node
// once.
func (a *Assembler) emitJudgment(rec *types.JudgmentRecord) {
	if !a.newDocIDs[rec.DocID] {
		return
	}
	delete(a.newDocIDs, rec.DocID)

	a.append(
		types.Literal(rec.NodeID, types.PredJudgmentID, rec.NodeID),
		types.Literal(rec.NodeID, types.PredTitle, rec.Title),
		types.Literal(rec.NodeID, types.PredDocID, rec.DocID),
		types.Literal(rec.NodeID, types.PredDgraphType, types.TypeJudgment),
	)
	if !a.stampTime.IsZero() {
		a.append(types.Literal(rec.NodeID, types.PredProcessedTimestamp, a.stampTime.Format(time.RFC3339)))
	}
	if rec.Year != nil {
		a.append(types.Literal(rec.NodeID, types.PredYear, fmt.Sprintf("%d", *rec.Year)))
	}
}

func (a *Assembler) emitJudges(rec *types.JudgmentRecord) {
	for _, name := range rec.Judges {
		clean := normalize.Scalar(name)
		if clean == "" {
			continue
		}
		id, _ := a.builders.Judges.GetOrCreate(clean)
		a.append(types.Ref(rec.NodeID, types.PredJudgedBy, id))
		a.stats.JudgeRelationships++
	}
}

func (a *Assembler) emitAdvocates(rec *types.JudgmentRecord) {
	for _, name := range rec.PetitionerAdvocates {
		clean := normalize.Scalar(name)
		if clean == "" {
			continue
		}
		id, _ := a.builders.PetitionerAdvocates.GetOrCreate(clean)
		a.append(types.Ref(rec.NodeID, types.PredPetitionerRepresented, id))
		a.stats.PetitionerAdvocateRelationships++
	}
	for _, name := range rec.RespondantAdvocates {
		clean := normalize.Scalar(name)
		if clean == "" {
			continue
		}
		id, _ := a.builders.RespondantAdvocates.GetOrCreate(clean)
		a.append(types.Ref(rec.NodeID, types.PredRespondantRepresented, id))
		a.stats.RespondantAdvocateRelationships++
	}
}

func (a *Assembler) emitOutcome(rec *types.JudgmentRecord) {
	if rec.Outcome == "" {
		return
	}
	id, _ := a.builders.Outcomes.GetOrCreate(rec.Outcome)
	a.append(types.Ref(rec.NodeID, types.PredHasOutcome, id))
	a.stats.OutcomeRelationships++
}

func (a *Assembler) emitCaseDuration(rec *types.JudgmentRecord) {
	if rec.CaseDuration == "" {
		return
	}
	id, _ := a.builders.CaseDurations.GetOrCreate(rec.CaseDuration)
	a.append(types.Ref(rec.NodeID, types.PredHasCaseDuration, id))
	a.stats.CaseDurationRelationships++
}

func (a *Assembler) append(stmts ...types.Statement) {
	a.statements = append(a.statements, stmts...)
}

// Records returns the normalized records collected in pass 1.
func (a *Assembler) Records() []types.JudgmentRecord { return a.records }

// DocIDs returns the distinct doc_ids of the collected batch, in input
// order. The coordinator marks exactly this set converted after upload.
func (a *Assembler) DocIDs() []string {
	seen := make(map[string]bool, len(a.records))
	out := make([]string, 0, len(a.records))
	for _, rec := range a.records {
		if seen[rec.DocID] {
			continue
		}
		seen[rec.DocID] = true
		out = append(out, rec.DocID)
	}
	return out
}

// Statements returns the complete statement set for the run: per-judgment
// descriptive and relationship statements in input order, followed by the
// entity node statements in builder order.
func (a *Assembler) Statements() []types.Statement {
	out := make([]types.Statement, 0, len(a.statements))
	out = append(out, a.statements...)
	out = append(out, a.builders.NodeStatements()...)
	return out
}

// Stats finalizes and returns the run statistics.
func (a *Assembler) Stats() types.Stats {
	s := a.stats
	s.TotalJudges = a.builders.Judges.Created()
	s.TotalPetitionerAdvocates = a.builders.PetitionerAdvocates.Created()
	s.TotalRespondantAdvocates = a.builders.RespondantAdvocates.Created()
	s.TotalOutcomes = a.builders.Outcomes.Created()
	s.TotalCaseDurations = a.builders.CaseDurations.Created()
	s.TotalCitations = a.builders.Citations.Created()
	s.TotalTriples = len(a.statements) + len(a.builders.NodeStatements())
	return s
}
