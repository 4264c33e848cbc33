package registry

import "github.com/jurisgraph/jurisgraph/pkg/types"

// Builders bundles one identity registry per entity kind for a single run.
// The judgment builder carries no DescribeFunc: the assembler emits judgment
// statements itself because they need the full record, not just the key.
type Builders struct {
	Judgments           *Builder
	Judges              *Builder
	PetitionerAdvocates *Builder
	RespondantAdvocates *Builder
	Outcomes            *Builder
	CaseDurations       *Builder
	Citations           *Builder
}

// NewBuilders constructs a fresh builder set. Scoped to one run; never share
// across concurrently executing runs.
func NewBuilders() *Builders {
	return &Builders{
		Judgments:           NewBuilder(KindJudgment, nil),
		Judges:              NewBuilder(KindJudge, describeJudge),
		PetitionerAdvocates: NewBuilder(KindPetitionerAdvocate, describeAdvocate("petitioner")),
		RespondantAdvocates: NewBuilder(KindRespondantAdvocate, describeAdvocate("respondant")),
		Outcomes:            NewBuilder(KindOutcome, describeOutcome),
		CaseDurations:       NewBuilder(KindCaseDuration, describeCaseDuration),
		Citations:           NewBuilder(KindCitation, describeCitation),
	}
}

// All returns every builder in a fixed order, used for snapshot persistence
// and for collecting node statements deterministically.
func (b *Builders) All() []*Builder {
	return []*Builder{
		b.Judgments,
		b.Judges,
		b.PetitionerAdvocates,
		b.RespondantAdvocates,
		b.Outcomes,
		b.CaseDurations,
		b.Citations,
	}
}

// NodeStatements collects the descriptive statements of every builder, in
// the fixed builder order then creation order.
func (b *Builders) NodeStatements() []types.Statement {
	var out []types.Statement
	for _, builder := range b.All() {
		out = append(out, builder.Statements()...)
	}
	return out
}

func describeJudge(id, name string) []types.Statement {
	return []types.Statement{
		types.Literal(id, types.PredDgraphType, types.TypeJudge),
		types.Literal(id, types.PredJudgeID, id),
		types.Literal(id, types.PredName, name),
	}
}

func describeAdvocate(role string) DescribeFunc {
	return func(id, name string) []types.Statement {
		return []types.Statement{
			types.Literal(id, types.PredDgraphType, types.TypeAdvocate),
			types.Literal(id, types.PredAdvocateID, id),
			types.Literal(id, types.PredName, name),
			types.Literal(id, types.PredAdvocateType, role),
		}
	}
}

func describeOutcome(id, outcome string) []types.Statement {
	return []types.Statement{
		types.Literal(id, types.PredDgraphType, types.TypeOutcome),
		types.Literal(id, types.PredOutcomeID, id),
		types.Literal(id, types.PredName, outcome),
	}
}

func describeCaseDuration(id, duration string) []types.Statement {
	return []types.Statement{
		types.Literal(id, types.PredDgraphType, types.TypeCaseDuration),
		types.Literal(id, types.PredCaseDurationID, id),
		types.Literal(id, types.PredDuration, duration),
	}
}

// describeCitation tags the stub as a Judgment: a citation that fails to
// match a title in the current batch may itself arrive later as a full
// judgment, and the shared type plus judgment_id lets the loader merge them.
func describeCitation(id, title string) []types.Statement {
	return []types.Statement{
		types.Literal(id, types.PredDgraphType, types.TypeJudgment),
		types.Literal(id, types.PredJudgmentID, id),
		types.Literal(id, types.PredTitle, title),
	}
}
