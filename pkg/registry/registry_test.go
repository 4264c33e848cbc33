package registry

import (
	"strings"
	"testing"

	"github.com/jurisgraph/jurisgraph/pkg/types"
)

func TestNodeIDDeterministic(t *testing.T) {
	a := NodeID(KindJudge, "Justice Rao")
	b := NodeID(KindJudge, "Justice Rao")
	if a != b {
		t.Errorf("same kind and key produced different ids: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "judge_justice_rao_") {
		t.Errorf("unexpected id shape: %q", a)
	}
}

func TestNodeIDKindQualified(t *testing.T) {
	// The same person name must get distinct identities per advocate role.
	p := NodeID(KindPetitionerAdvocate, "A. Kumar")
	r := NodeID(KindRespondantAdvocate, "A. Kumar")
	if p == r {
		t.Errorf("advocate roles share an id: %q", p)
	}
	if !strings.HasPrefix(p, "petitioner_advocate_") {
		t.Errorf("unexpected petitioner id: %q", p)
	}
	if !strings.HasPrefix(r, "respondant_advocate_") {
		t.Errorf("unexpected respondant id: %q", r)
	}
}

func TestNodeIDEmptySlug(t *testing.T) {
	id := NodeID(KindOutcome, "???")
	if !strings.HasPrefix(id, "outcome_") {
		t.Errorf("unexpected id: %q", id)
	}
	// No readable slug survives, so the id is prefix plus full hash only.
	rest := strings.TrimPrefix(id, "outcome_")
	if len(rest) != 16 {
		t.Errorf("expected 16-char hash suffix, got %q", rest)
	}
}

func TestNodeIDSlugCapped(t *testing.T) {
	long := strings.Repeat("abcdef ", 30)
	id := NodeID(KindJudgment, long)
	parts := strings.SplitN(id, "_", 2)
	if len(parts[0]) != 1 || parts[0] != "j" {
		t.Fatalf("unexpected judgment prefix in %q", id)
	}
	if len(id) > len("j_")+maxSlugLen+1+8 {
		t.Errorf("id longer than slug cap allows: %q (%d chars)", id, len(id))
	}
}

func TestGetOrCreateIdempotent(t *testing.T) {
	b := NewBuilder(KindJudge, func(id, key string) []types.Statement {
		return []types.Statement{types.Literal(id, types.PredName, key)}
	})

	id1, created1 := b.GetOrCreate("Justice Rao")
	id2, created2 := b.GetOrCreate("Justice Rao")

	if id1 != id2 {
		t.Errorf("repeat GetOrCreate changed id: %q vs %q", id1, id2)
	}
	if !created1 || created2 {
		t.Errorf("created flags = %v, %v; want true, false", created1, created2)
	}
	if b.Created() != 1 {
		t.Errorf("Created() = %d, want 1", b.Created())
	}
	if len(b.Statements()) != 1 {
		t.Errorf("descriptive statements emitted %d times, want 1", len(b.Statements()))
	}
}

func TestPreloadSuppressesDescription(t *testing.T) {
	b := NewBuilder(KindJudge, func(id, key string) []types.Statement {
		return []types.Statement{types.Literal(id, types.PredName, key)}
	})
	b.Preload("Justice Rao", "judge_justice_rao_deadbeef")

	id, created := b.GetOrCreate("Justice Rao")
	if id != "judge_justice_rao_deadbeef" {
		t.Errorf("preloaded id not honored: %q", id)
	}
	if created {
		t.Error("preloaded key reported as created")
	}
	if len(b.Statements()) != 0 {
		t.Errorf("preloaded key re-emitted %d descriptive statements", len(b.Statements()))
	}
	if b.Created() != 0 {
		t.Errorf("Created() = %d, want 0", b.Created())
	}
}

func TestBuildersDescribeStatements(t *testing.T) {
	b := NewBuilders()

	judgeID, _ := b.Judges.GetOrCreate("Justice Rao")
	advID, _ := b.PetitionerAdvocates.GetOrCreate("A. Kumar")
	citID, _ := b.Citations.GetOrCreate("P v Q")

	stmts := b.NodeStatements()

	assertHas(t, stmts, types.Literal(judgeID, types.PredDgraphType, types.TypeJudge))
	assertHas(t, stmts, types.Literal(judgeID, types.PredJudgeID, judgeID))
	assertHas(t, stmts, types.Literal(advID, types.PredAdvocateType, "petitioner"))
	// Citation stubs are typed as judgments so a later full judgment with the
	// same title merges into the same node.
	assertHas(t, stmts, types.Literal(citID, types.PredDgraphType, types.TypeJudgment))
	assertHas(t, stmts, types.Literal(citID, types.PredTitle, "P v Q"))
}

func TestJudgmentBuilderEmitsNothing(t *testing.T) {
	b := NewBuilders()
	b.Judgments.GetOrCreate("D-1")
	if n := len(b.Judgments.Statements()); n != 0 {
		t.Errorf("judgment builder emitted %d statements, want 0", n)
	}
}

func assertHas(t *testing.T, stmts []types.Statement, want types.Statement) {
	t.Helper()
	for _, s := range stmts {
		if s == want {
			return
		}
	}
	t.Errorf("statement set missing %v", want)
}
