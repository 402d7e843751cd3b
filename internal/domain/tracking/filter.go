package tracking

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Entity identifies which part of a run a filter clause or order term addresses.
type Entity string

const (
	EntityAttribute Entity = "attributes"
	EntityTag       Entity = "tags"
	EntityMetric    Entity = "metrics"
	EntityParam     Entity = "params"
)

// Comparator is a filter clause operator.
type Comparator string

const (
	CmpEqual        Comparator = "="
	CmpNotEqual     Comparator = "!="
	CmpGreater      Comparator = ">"
	CmpGreaterEqual Comparator = ">="
	CmpLess         Comparator = "<"
	CmpLessEqual    Comparator = "<="
)

// Clause is one predicate of a filter string, e.g. tags.stage = 'tuning'.
type Clause struct {
	Entity     Entity
	Key        string
	Comparator Comparator
	Value      string
	Number     float64 // set for metric clauses
}

// Filter is a conjunction of clauses. The zero value matches every run.
type Filter struct {
	Clauses []Clause
}

// OrderTerm is one sort key of an order_by list.
type OrderTerm struct {
	Entity Entity
	Key    string
	Desc   bool
}

// SearchQuery selects runs across experiments.
type SearchQuery struct {
	ExperimentIDs []string
	Filter        Filter
	OrderBy       []OrderTerm
	// MaxResults caps the result size. 0 means no limit.
	MaxResults int
}

// attribute keys accepted in filters and order_by, and the known comparators
var (
	filterAttributes = map[string]bool{"status": true, "run_name": true, "run_id": true}
	orderAttributes  = map[string]bool{"start_time": true, "end_time": true, "run_name": true}

	comparators = map[Comparator]bool{
		CmpEqual: true, CmpNotEqual: true,
		CmpGreater: true, CmpGreaterEqual: true,
		CmpLess: true, CmpLessEqual: true,
	}
)

// ParseFilter parses the filter-string subset used by the registry workflows:
//
//	attributes.status = 'FINISHED' and tags.mlflow.parentRunId = '<id>' and metrics.val_f1 > 0.9
//
// Clauses are joined with "and" (case-insensitive). An empty string yields the
// zero Filter.
func ParseFilter(s string) (Filter, error) {
	toks, err := tokenize(s)
	if err != nil {
		return Filter{}, err
	}
	if len(toks) == 0 {
		return Filter{}, nil
	}

	var f Filter
	for i := 0; i < len(toks); {
		if i+2 >= len(toks) {
			return Filter{}, fmt.Errorf("%w: incomplete clause near %q", ErrInvalidFilter, toks[i].text)
		}
		ident, op, val := toks[i], toks[i+1], toks[i+2]
		if ident.kind != tokIdent || op.kind != tokOp || (val.kind != tokString && val.kind != tokNumber) {
			return Filter{}, fmt.Errorf("%w: expected <entity>.<key> <op> <value> near %q", ErrInvalidFilter, ident.text)
		}
		clause, err := newClause(ident.text, Comparator(op.text), val)
		if err != nil {
			return Filter{}, err
		}
		f.Clauses = append(f.Clauses, clause)
		i += 3

		if i < len(toks) {
			if toks[i].kind != tokIdent || !strings.EqualFold(toks[i].text, "and") {
				return Filter{}, fmt.Errorf("%w: expected 'and' near %q", ErrInvalidFilter, toks[i].text)
			}
			i++
			if i == len(toks) {
				return Filter{}, fmt.Errorf("%w: dangling 'and'", ErrInvalidFilter)
			}
		}
	}
	return f, nil
}

func newClause(ident string, cmp Comparator, val token) (Clause, error) {
	if !comparators[cmp] {
		return Clause{}, fmt.Errorf("%w: unsupported comparator %q", ErrInvalidFilter, cmp)
	}
	entity, key, err := splitIdentifier(ident)
	if err != nil {
		return Clause{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	c := Clause{Entity: entity, Key: key, Comparator: cmp, Value: val.text}

	switch entity {
	case EntityMetric:
		if val.kind != tokNumber {
			return Clause{}, fmt.Errorf("%w: metric %q must be compared to a number", ErrInvalidFilter, key)
		}
		n, err := strconv.ParseFloat(val.text, 64)
		if err != nil {
			return Clause{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		c.Number = n
	case EntityAttribute:
		if !filterAttributes[key] {
			return Clause{}, fmt.Errorf("%w: unsupported attribute %q", ErrInvalidFilter, key)
		}
		fallthrough
	default:
		if val.kind != tokString {
			return Clause{}, fmt.Errorf("%w: %s.%s must be compared to a quoted string", ErrInvalidFilter, entity, key)
		}
		if cmp != CmpEqual && cmp != CmpNotEqual {
			return Clause{}, fmt.Errorf("%w: %s.%s only supports = and !=", ErrInvalidFilter, entity, key)
		}
	}
	return c, nil
}

// ParseOrderBy parses order_by terms such as "attributes.start_time DESC" or
// "metrics.val_f1_macro DESC". Direction defaults to ascending.
func ParseOrderBy(terms []string) ([]OrderTerm, error) {
	out := make([]OrderTerm, 0, len(terms))
	for _, raw := range terms {
		fields := strings.Fields(raw)
		if len(fields) == 0 || len(fields) > 2 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOrderBy, raw)
		}
		entity, key, err := splitIdentifier(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOrderBy, err)
		}
		if entity == EntityAttribute && !orderAttributes[key] {
			return nil, fmt.Errorf("%w: unsupported attribute %q", ErrInvalidOrderBy, key)
		}
		term := OrderTerm{Entity: entity, Key: key}
		if len(fields) == 2 {
			switch strings.ToUpper(fields[1]) {
			case "ASC":
			case "DESC":
				term.Desc = true
			default:
				return nil, fmt.Errorf("%w: bad direction in %q", ErrInvalidOrderBy, raw)
			}
		}
		out = append(out, term)
	}
	return out, nil
}

// splitIdentifier splits "tags.mlflow.parentRunId" into (tags, mlflow.parentRunId).
// A bare identifier is treated as an attribute.
func splitIdentifier(ident string) (Entity, string, error) {
	head, rest, found := strings.Cut(ident, ".")
	if !found {
		return EntityAttribute, ident, nil
	}
	rest = strings.Trim(rest, "`\"")
	if rest == "" {
		return "", "", fmt.Errorf("empty key in %q", ident)
	}
	switch strings.ToLower(head) {
	case "attributes", "attribute", "attr", "run":
		return EntityAttribute, rest, nil
	case "tags", "tag":
		return EntityTag, rest, nil
	case "metrics", "metric":
		return EntityMetric, rest, nil
	case "params", "param", "parameters", "parameter":
		return EntityParam, rest, nil
	default:
		return "", "", fmt.Errorf("unknown entity %q", head)
	}
}

// Matches reports whether run satisfies every clause.
func (f Filter) Matches(run *Run) bool {
	for _, c := range f.Clauses {
		if !c.matches(run) {
			return false
		}
	}
	return true
}

func (c Clause) matches(run *Run) bool {
	switch c.Entity {
	case EntityMetric:
		v, ok := run.MetricValue(c.Key)
		if !ok {
			return false
		}
		return compareNumbers(v, c.Comparator, c.Number)
	case EntityTag:
		v, ok := run.Tags[c.Key]
		return compareStrings(v, ok, c.Comparator, c.Value)
	case EntityParam:
		v, ok := run.Params[c.Key]
		return compareStrings(v, ok, c.Comparator, c.Value)
	case EntityAttribute:
		var v string
		switch c.Key {
		case "status":
			v = string(run.Status)
		case "run_name":
			v = run.Name
		case "run_id":
			v = run.ID
		}
		return compareStrings(v, true, c.Comparator, c.Value)
	}
	return false
}

func compareStrings(v string, present bool, cmp Comparator, want string) bool {
	switch cmp {
	case CmpEqual:
		return present && v == want
	case CmpNotEqual:
		return !present || v != want
	}
	return false
}

func compareNumbers(v float64, cmp Comparator, want float64) bool {
	switch cmp {
	case CmpEqual:
		return v == want
	case CmpNotEqual:
		return v != want
	case CmpGreater:
		return v > want
	case CmpGreaterEqual:
		return v >= want
	case CmpLess:
		return v < want
	case CmpLessEqual:
		return v <= want
	}
	return false
}

// SortRuns orders runs in place by terms. Runs missing an ordering metric sort
// after runs that have it, whichever the direction. Remaining ties keep the
// most recently started run first, then run id, so results are deterministic.
func SortRuns(runs []*Run, terms []OrderTerm) {
	sort.SliceStable(runs, func(i, j int) bool {
		a, b := runs[i], runs[j]
		for _, t := range terms {
			if c := compareByTerm(a, b, t); c != 0 {
				return c < 0
			}
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.After(b.StartTime)
		}
		return a.ID < b.ID
	})
}

// compareByTerm returns -1 when a sorts before b, 1 when after, 0 on a tie.
func compareByTerm(a, b *Run, t OrderTerm) int {
	dir := 1
	if t.Desc {
		dir = -1
	}
	switch t.Entity {
	case EntityMetric:
		av, aok := a.MetricValue(t.Key)
		bv, bok := b.MetricValue(t.Key)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		return dir * cmpFloat(av, bv)
	case EntityAttribute:
		switch t.Key {
		case "start_time":
			return dir * cmpInt(a.StartTime.UnixNano(), b.StartTime.UnixNano())
		case "end_time":
			return dir * cmpInt(endNanos(a), endNanos(b))
		case "run_name":
			return dir * strings.Compare(a.Name, b.Name)
		}
	case EntityTag:
		return dir * strings.Compare(a.Tags[t.Key], b.Tags[t.Key])
	case EntityParam:
		return dir * strings.Compare(a.Params[t.Key], b.Params[t.Key])
	}
	return 0
}

func endNanos(r *Run) int64 {
	if r.EndTime == nil {
		return math.MaxInt64
	}
	return r.EndTime.UnixNano()
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokOp
	tokString
	tokNumber
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(s string) ([]token, error) {
	var toks []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '\'' || r == '"':
			j := i + 1
			for j < len(rs) && rs[j] != r {
				j++
			}
			if j == len(rs) {
				return nil, fmt.Errorf("%w: unterminated string", ErrInvalidFilter)
			}
			toks = append(toks, token{kind: tokString, text: string(rs[i+1 : j])})
			i = j + 1
		case r == '=' || r == '!' || r == '<' || r == '>':
			j := i + 1
			if j < len(rs) && rs[j] == '=' {
				j++
			}
			op := string(rs[i:j])
			if op == "!" {
				return nil, fmt.Errorf("%w: stray '!'", ErrInvalidFilter)
			}
			toks = append(toks, token{kind: tokOp, text: op})
			i = j
		case r == '-' || r == '+' || r == '.' || unicode.IsDigit(r):
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.' || rs[j] == 'e' || rs[j] == 'E' || rs[j] == '-' || rs[j] == '+') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: string(rs[i:j])})
			i = j
		default:
			j := i
			inQuote := false
			for j < len(rs) {
				c := rs[j]
				if c == '`' {
					inQuote = !inQuote
				} else if !inQuote && (unicode.IsSpace(c) || c == '=' || c == '!' || c == '<' || c == '>' || c == '\'' || c == '"') {
					break
				}
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[i:j])})
			i = j
		}
	}
	return toks, nil
}
