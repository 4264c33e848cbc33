package types

// Stats accumulates processing counters over one run. Node counters count
// first-time creations only; relationship counters count every emitted edge.
type Stats struct {
	TotalJudgments           int `json:"judgments"`
	TotalJudges              int `json:"judges"`
	TotalPetitionerAdvocates int `json:"petitioner_advocates"`
	TotalRespondantAdvocates int `json:"respondant_advocates"`
	TotalOutcomes            int `json:"outcomes"`
	TotalCaseDurations       int `json:"case_durations"`
	TotalCitations           int `json:"citations"`
	TotalTriples             int `json:"total_triples"`

	JudgeRelationships              int `json:"judge_relationships"`
	PetitionerAdvocateRelationships int `json:"petitioner_advocate_relationships"`
	RespondantAdvocateRelationships int `json:"respondant_advocate_relationships"`
	OutcomeRelationships            int `json:"outcome_relationships"`
	CaseDurationRelationships       int `json:"case_duration_relationships"`
	CitationRelationships           int `json:"citation_relationships"`

	// TitleMatches counts citations resolved to judgments in the current
	// batch; CitationMatches counts citations that became external stubs.
	TitleMatches    int `json:"title_matches"`
	CitationMatches int `json:"citation_matches"`
}
