package types

import "fmt"

// Predicate names form the fixed vocabulary consumed by the graph loader.
const (
	PredJudgmentID             = "judgment_id"
	PredTitle                  = "title"
	PredDocID                  = "doc_id"
	PredDgraphType             = "dgraph.type"
	PredYear                   = "year"
	PredProcessedTimestamp     = "processed_timestamp"
	PredJudgedBy               = "judged_by"
	PredName                   = "name"
	PredAdvocateType           = "advocate_type"
	PredPetitionerRepresented  = "petitioner_represented_by"
	PredRespondantRepresented  = "respondant_represented_by"
	PredHasOutcome             = "has_outcome"
	PredHasCaseDuration        = "has_case_duration"
	PredCites                  = "cites"
	PredJudgeID                = "judge_id"
	PredAdvocateID             = "advocate_id"
	PredOutcomeID              = "outcome_id"
	PredCaseDurationID         = "case_duration_id"
	PredDuration               = "duration"
)

// Node type tags carried on dgraph.type statements.
const (
	TypeJudgment     = "Judgment"
	TypeJudge        = "Judge"
	TypeAdvocate     = "Advocate"
	TypeOutcome      = "Outcome"
	TypeCaseDuration = "CaseDuration"
)

// Statement is one RDF triple. Object is either a literal string or a node
// reference, distinguished by the Literal flag.
type Statement struct {
	Subject   string
	Predicate string
	Object    string
	Literal   bool
}

// Literal builds a descriptive statement with a quoted literal object.
func Literal(subject, predicate, object string) Statement {
	return Statement{Subject: subject, Predicate: predicate, Object: object, Literal: true}
}

// Ref builds a relationship statement pointing at another node.
func Ref(subject, predicate, object string) Statement {
	return Statement{Subject: subject, Predicate: predicate, Object: object, Literal: false}
}

// Line renders the statement in the N-Quad-style line format the dgraph live
// loader consumes. Literal objects are expected to already carry escaped
// quote characters (the normalizer does this), so they are wrapped verbatim.
func (s Statement) Line() string {
	if s.Literal {
		return fmt.Sprintf(`<%s> <%s> "%s" .`, s.Subject, s.Predicate, s.Object)
	}
	return fmt.Sprintf("<%s> <%s> <%s> .", s.Subject, s.Predicate, s.Object)
}
