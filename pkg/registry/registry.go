// Package registry owns entity identity for the triple-generation engine.
// Every entity kind (judgment, judge, the two advocate roles, outcome, case
// duration, citation stub) gets a Builder holding an exact-match map from
// natural key to node identifier. Identifiers are content-derived: a
// sanitized slug of the type-qualified natural key plus a short FNV-1a
// suffix, so the same key always yields the same identifier within a run and
// across runs with no shared counter state. The dgraph live upsert predicates
// at the load boundary merge by the same natural-key fields, so both layers
// agree on identity.
package registry

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// Kind names an entity kind. The string value doubles as the snapshot
// namespace for persisted assignments.
type Kind string

const (
	KindJudgment           Kind = "judgment"
	KindJudge              Kind = "judge"
	KindPetitionerAdvocate Kind = "petitioner_advocate"
	KindRespondantAdvocate Kind = "respondant_advocate"
	KindOutcome            Kind = "outcome"
	KindCaseDuration       Kind = "case_duration"
	KindCitation           Kind = "citation"
)

// idPrefix maps a kind to the identifier prefix used in emitted node ids.
var idPrefix = map[Kind]string{
	KindJudgment:           "j",
	KindJudge:              "judge",
	KindPetitionerAdvocate: "petitioner_advocate",
	KindRespondantAdvocate: "respondant_advocate",
	KindOutcome:            "outcome",
	KindCaseDuration:       "case_duration",
	KindCitation:           "c",
}

// maxSlugLen caps the readable part of an identifier; the hash suffix keeps
// truncated or colliding slugs distinct.
const maxSlugLen = 48

// NodeID derives the stable node identifier for a natural key of the given
// kind. Deterministic: same kind and key always produce the same id.
func NodeID(kind Kind, key string) string {
	h := fnv.New64a()
	h.Write([]byte(string(kind)))
	h.Write([]byte{0})
	h.Write([]byte(key))

	slug := slugify(key)
	prefix := idPrefix[kind]
	if prefix == "" {
		prefix = string(kind)
	}
	if slug == "" {
		return fmt.Sprintf("%s_%016x", prefix, h.Sum64())
	}
	return fmt.Sprintf("%s_%s_%08x", prefix, slug, h.Sum64()&0xffffffff)
}

// slugify lowercases the key and squashes everything outside [a-z0-9] into
// single underscores.
func slugify(key string) string {
	var b strings.Builder
	lastUnderscore := true // trim leading underscores
	for _, r := range strings.ToLower(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// DescribeFunc emits the descriptive statements for a newly created entity.
// It runs exactly once per distinct natural key.
type DescribeFunc func(id, key string) []types.Statement

// Builder is the identity registry for one entity kind. Not safe for
// concurrent use; each run owns its own set of builders.
type Builder struct {
	kind       Kind
	ids        map[string]string
	preloaded  map[string]bool
	statements []types.Statement
	describe   DescribeFunc
	created    int
}

// NewBuilder creates a Builder for the given kind. describe may be nil when
// the caller emits descriptive statements itself (the judgment assembler
// does, because judgment statements need the whole record).
func NewBuilder(kind Kind, describe DescribeFunc) *Builder {
	return &Builder{
		kind:      kind,
		ids:       make(map[string]string),
		preloaded: make(map[string]bool),
		describe:  describe,
	}
}

// Kind returns the entity kind this builder owns.
func (b *Builder) Kind() Kind { return b.kind }

// GetOrCreate returns the node identifier for the natural key, allocating it
// and emitting the entity's descriptive statements on first sight. The
// second return reports whether this call created the entity.
func (b *Builder) GetOrCreate(key string) (string, bool) {
	if id, ok := b.ids[key]; ok {
		return id, false
	}
	id := NodeID(b.kind, key)
	b.ids[key] = id
	b.created++
	if b.describe != nil {
		b.statements = append(b.statements, b.describe(id, key)...)
	}
	return id, true
}

// Preload seeds the registry with a persisted key→id assignment from an
// earlier run. Preloaded keys do not re-emit descriptive statements and do
// not count as created.
func (b *Builder) Preload(key, id string) {
	if _, ok := b.ids[key]; ok {
		return
	}
	b.ids[key] = id
	b.preloaded[key] = true
}

// Statements returns the descriptive statements emitted by this builder, in
// creation order.
func (b *Builder) Statements() []types.Statement { return b.statements }

// Created returns how many entities this builder created during the run.
func (b *Builder) Created() int { return b.created }

// Assignments returns a copy of the full key→id map, including preloaded
// entries, for snapshot persistence.
func (b *Builder) Assignments() map[string]string {
	out := make(map[string]string, len(b.ids))
	for k, v := range b.ids {
		out[k] = v
	}
	return out
}
