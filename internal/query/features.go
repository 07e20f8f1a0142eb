// Package query implements the query-feature pipeline backing every listing
// endpoint: raw query-string parameters become a typed, immutable request
// descriptor honoring four orthogonal transforms (filter, sort, projection,
// pagination) which is rendered into one SQL SELECT. Parsing and rendering
// are pure; execution belongs to the repositories.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dogshouse/dogs-api/pkg/apperror"
)

// Op is a comparison operator of a filter condition.
type Op string

const (
	OpEq  Op = "="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

var bracketOps = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
}

// Kind declares how a field's raw string values are coerced before they are
// bound as SQL arguments.
type Kind int

const (
	Text Kind = iota
	Numeric
	Bool
	Time
)

// Field maps an api-facing field name to its column. The field list doubles
// as the whitelist: keys outside it never reach SQL rendering.
type Field struct {
	Name   string
	Column string
	Kind   Kind
}

// Condition is one typed filter constraint.
type Condition struct {
	Column string
	Op     Op
	Value  any
}

// SortKey is one ORDER BY term.
type SortKey struct {
	Column string
	Desc   bool
}

var reserved = map[string]struct{}{
	"fields": {},
	"sort":   {},
	"page":   {},
	"limit":  {},
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Builder translates raw query-string parameters for one resource into a
// Request. Configure it once per resource with the field whitelist and the
// api name of the creation-time field (default sort and default projection
// exclusion).
type Builder struct {
	fields  []Field
	byName  map[string]Field
	created string
}

func NewBuilder(fields []Field, createdField string) *Builder {
	all := make([]Field, 0, len(fields)+1)
	all = append(all, Field{Name: "id", Column: "id"})
	all = append(all, fields...)
	byName := make(map[string]Field, len(all))
	for _, f := range all {
		byName[f.Name] = f
	}
	return &Builder{fields: all, byName: byName, created: createdField}
}

// Parse builds a Request from raw query parameters. Unknown fields in
// filter, sort or projection fail with a 400-class error; non-numeric or
// non-positive page/limit silently fall back to the defaults.
func (b *Builder) Parse(values url.Values) (Request, error) {
	req := Request{page: defaultPage, limit: defaultLimit}

	// Filter: every key outside the reserved set becomes a constraint.
	// Iterate in sorted key order so rendered SQL is deterministic.
	keys := make([]string, 0, len(values))
	for k := range values {
		if _, ok := reserved[k]; ok {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		name, op, err := splitOp(key)
		if err != nil {
			return Request{}, err
		}
		f, ok := b.byName[name]
		if !ok {
			return Request{}, apperror.BadRequest("Cannot filter by " + name)
		}
		val, err := coerce(f, values.Get(key))
		if err != nil {
			return Request{}, err
		}
		req.conds = append(req.conds, Condition{Column: f.Column, Op: op, Value: val})
	}

	// Sort: comma separated, "-" prefix for descending; default is
	// descending by creation time.
	if s := values.Get("sort"); s == "" {
		req.sorts = []SortKey{{Column: b.byName[b.created].Column, Desc: true}}
	} else {
		for _, part := range strings.Split(s, ",") {
			if part == "" {
				continue
			}
			desc := strings.HasPrefix(part, "-")
			name := strings.TrimPrefix(part, "-")
			f, ok := b.byName[name]
			if !ok {
				return Request{}, apperror.BadRequest("Cannot sort by " + name)
			}
			req.sorts = append(req.sorts, SortKey{Column: f.Column, Desc: desc})
		}
	}

	// Projection: comma separated includes; default is every field except
	// the creation timestamp. The id is always selected.
	if fl := values.Get("fields"); fl == "" {
		for _, f := range b.fields {
			if f.Name == b.created {
				continue
			}
			req.fields = append(req.fields, f.Name)
			req.cols = append(req.cols, f.Column)
		}
	} else {
		req.fields = []string{"id"}
		req.cols = []string{"id"}
		for _, part := range strings.Split(fl, ",") {
			if part == "" || part == "id" {
				continue
			}
			f, ok := b.byName[part]
			if !ok {
				return Request{}, apperror.BadRequest("Cannot select " + part)
			}
			req.fields = append(req.fields, f.Name)
			req.cols = append(req.cols, f.Column)
		}
	}

	req.page = atoiDefault(values.Get("page"), defaultPage)
	req.limit = atoiDefault(values.Get("limit"), defaultLimit)
	return req, nil
}

// splitOp parses "price[gte]" into ("price", OpGte); bare keys are equality.
func splitOp(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") {
		return "", "", apperror.BadRequest("Malformed filter key " + key)
	}
	name := key[:open]
	opName := key[open+1 : len(key)-1]
	op, ok := bracketOps[opName]
	if !ok {
		return "", "", apperror.BadRequest("Unknown filter operator " + opName)
	}
	return name, op, nil
}

func coerce(f Field, raw string) (any, error) {
	switch f.Kind {
	case Numeric:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperror.BadRequest("Invalid numeric value for " + f.Name)
		}
		return n, nil
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperror.BadRequest("Invalid boolean value for " + f.Name)
		}
		return b, nil
	case Time:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, apperror.BadRequest("Invalid timestamp value for " + f.Name)
	default:
		return raw, nil
	}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Request is an immutable descriptor of one listing read. Builder methods
// return new values; nothing mutates shared state.
type Request struct {
	conds  []Condition
	sorts  []SortKey
	fields []string // api names, id first
	cols   []string // matching columns
	page   int
	limit  int
	offset int
	paged  bool
}

func (r Request) Page() int               { return r.page }
func (r Request) Limit() int              { return r.limit }
func (r Request) Offset() int             { return r.offset }
func (r Request) Fields() []string        { return r.fields }
func (r Request) Conditions() []Condition { return r.conds }
func (r Request) SortKeys() []SortKey     { return r.sorts }

// Paginate returns a copy with the offset computed against the precomputed
// total count. A page past the last one fails with a NotFound-class error
// rather than returning an empty page; an empty collection still serves
// page 1.
func (r Request) Paginate(count int) (Request, error) {
	totalPages := (count + r.limit - 1) / r.limit
	if count > 0 && r.page > totalPages {
		return Request{}, apperror.NotFound("Page invalid")
	}
	r.offset = (r.page - 1) * r.limit
	r.paged = true
	return r, nil
}

// SQL renders the composed SELECT for table with positional arguments.
// Extra conditions (e.g. a repository's active-only predicate) are ANDed
// ahead of the parsed filter.
func (r Request) SQL(table string, extra ...Condition) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(r.cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(table)

	conds := make([]Condition, 0, len(extra)+len(r.conds))
	conds = append(conds, extra...)
	conds = append(conds, r.conds...)
	for i, c := range conds {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, c.Value)
		sb.WriteString(c.Column)
		sb.WriteString(" ")
		sb.WriteString(string(c.Op))
		sb.WriteString(" $")
		sb.WriteString(strconv.Itoa(len(args)))
	}

	for i, s := range r.sorts {
		if i == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(s.Column)
		if s.Desc {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}

	if r.paged {
		args = append(args, r.limit)
		sb.WriteString(" LIMIT $")
		sb.WriteString(strconv.Itoa(len(args)))
		args = append(args, r.offset)
		sb.WriteString(" OFFSET $")
		sb.WriteString(strconv.Itoa(len(args)))
	}

	return sb.String(), args
}

// Remap converts one column-keyed row into an api-field-keyed document,
// honoring the request's projection.
func (r Request) Remap(row map[string]any) map[string]any {
	out := make(map[string]any, len(r.fields))
	for i, name := range r.fields {
		if v, ok := row[r.cols[i]]; ok {
			out[name] = v
		}
	}
	return out
}
