// Package normalize cleans raw field values coming out of the judgment store.
// The store carries years of scraped tabular data, so list-valued fields show
// up in four encodings: a native JSON array, a dict wrapper holding the list
// under a known key, a bracketed pseudo-list with broken escaping, or a plain
// comma-separated / single value. Everything here is tolerant by contract:
// a field that cannot be parsed becomes an empty value, never an error that
// aborts the batch.
package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"

	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// wrapperKey is the dict key some scraped rows wrap their citation list in.
const wrapperKey = "cited_cases"

var quotedRe = regexp.MustCompile(`"([^"]*)"`)

// sentinel reports whether a trimmed value is one of the not-a-value markers
// that show up in the source data.
func sentinel(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "[]", "{}":
		return true
	}
	return false
}

// Scalar trims a raw value, escapes embedded double quotes, and maps nil and
// the nan/null sentinels to the empty string.
func Scalar(v any) string {
	if v == nil {
		return ""
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if sentinel(s) {
		return ""
	}
	return strings.ReplaceAll(s, `"`, `\"`)
}

// ListField parses a list-valued field in whatever encoding the store handed
// back. Order is preserved, duplicates are kept, sentinel elements are
// dropped. A malformed value is logged and yields an empty slice.
func ListField(raw any, log *slog.Logger) []string {
	if log == nil {
		log = slog.Default()
	}

	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return cleanItems(v)
	case []any:
		items := make([]string, 0, len(v))
		for _, it := range v {
			if it == nil {
				continue
			}
			items = append(items, fmt.Sprintf("%v", it))
		}
		return cleanItems(items)
	}

	s := strings.TrimSpace(fmt.Sprintf("%v", raw))
	if sentinel(s) {
		return nil
	}

	switch {
	case strings.HasPrefix(s, "{") || strings.Contains(s, wrapperKey):
		return cleanItems(parseDictWrapper(s, log))
	case strings.HasPrefix(s, "["):
		return cleanItems(parseBracketedList(s, log))
	case strings.Contains(s, ","):
		parts := strings.Split(s, ",")
		items := make([]string, 0, len(parts))
		for _, p := range parts {
			items = append(items, stripQuotes(p))
		}
		return cleanItems(items)
	default:
		return cleanItems([]string{stripQuotes(s)})
	}
}

// parseDictWrapper handles `{"cited_cases": [...]}` and the headless variant
// `'cited_cases': [...]` that some rows carry.
func parseDictWrapper(s string, log *slog.Logger) []string {
	if !strings.HasPrefix(s, "{") {
		s = "{" + s + "}"
	}
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		log.Warn("could not repair dict-wrapped list field", "value", truncate(s, 100), "error", err)
		return nil
	}

	var wrapper map[string]any
	if err := json.Unmarshal([]byte(repaired), &wrapper); err != nil {
		log.Warn("could not parse dict-wrapped list field", "value", truncate(s, 100), "error", err)
		return nil
	}

	list, ok := wrapper[wrapperKey].([]any)
	if !ok {
		return nil
	}
	items := make([]string, 0, len(list))
	for _, it := range list {
		if it == nil {
			continue
		}
		items = append(items, fmt.Sprintf("%v", it))
	}
	return items
}

// parseBracketedList tries a strict JSON array first, then a repaired parse,
// and finally falls back to pulling out every double-quoted substring. The
// fallback recovers rows whose escaping was mangled upstream.
func parseBracketedList(s string, log *slog.Logger) []string {
	cleaned := strings.NewReplacer(`\"`, `"`, `\n`, " ", `\t`, " ").Replace(s)

	var list []any
	if err := json.Unmarshal([]byte(cleaned), &list); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(cleaned)
		if rerr != nil || json.Unmarshal([]byte(repaired), &list) != nil {
			matches := quotedRe.FindAllStringSubmatch(cleaned, -1)
			if len(matches) == 0 {
				log.Warn("could not parse bracketed list field", "value", truncate(s, 100))
				return nil
			}
			items := make([]string, 0, len(matches))
			for _, m := range matches {
				items = append(items, m[1])
			}
			return items
		}
	}

	items := make([]string, 0, len(list))
	for _, it := range list {
		if it == nil {
			continue
		}
		items = append(items, fmt.Sprintf("%v", it))
	}
	return items
}

// cleanItems trims every element and drops sentinels, preserving order.
func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if sentinel(it) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func stripQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Record builds the normalized JudgmentRecord for one source document. All
// field defaulting lives here: a missing doc_id falls back to the store id, a
// missing title becomes "Untitled", a year that cannot be coerced to an
// integer is dropped.
func Record(doc types.SourceDocument, log *slog.Logger) (types.JudgmentRecord, error) {
	docID := Scalar(doc.Fields["doc_id"])
	if docID == "" {
		docID = strings.TrimSpace(doc.StoreID)
	}
	if docID == "" {
		return types.JudgmentRecord{}, types.ErrEmptyDocID
	}

	title := Scalar(doc.Fields["title"])
	if title == "" {
		title = "Untitled"
	}

	rec := types.JudgmentRecord{
		DocID:               docID,
		Title:               title,
		Year:                Year(doc.Fields["year"]),
		Outcome:             Scalar(doc.Fields["outcome"]),
		CaseDuration:        Scalar(doc.Fields["case_duration"]),
		Citations:           ListField(doc.Fields["citations"], log),
		Judges:              ListField(doc.Fields["judges"], log),
		PetitionerAdvocates: ListField(doc.Fields["petitioner_advocates"], log),
		RespondantAdvocates: ListField(doc.Fields["respondant_advocates"], log),
	}
	return rec, nil
}

// Year coerces a raw year value to an int, returning nil when absent or
// unparseable.
func Year(v any) *int {
	switch y := v.(type) {
	case nil:
		return nil
	case int:
		return &y
	case int64:
		n := int(y)
		return &n
	case float64:
		n := int(y)
		return &n
	case json.Number:
		if n, err := y.Int64(); err == nil {
			i := int(n)
			return &i
		}
		return nil
	case string:
		s := strings.TrimSpace(y)
		if sentinel(s) {
			return nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			return &n
		}
		return nil
	default:
		return nil
	}
}
