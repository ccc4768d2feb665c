// Package query turns collection request parameters into SQL predicates and
// ordering clauses. Only fields named in a resource's Spec are ever honoured.
package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	SearchParam   = "search"
	OrderingParam = "ordering"
	defaultOrder  = "id ASC"
)

type Kind int

const (
	KindText Kind = iota
	KindID
	KindDecimal
)

// Field maps a request parameter onto a column. For search fields Column is
// a complete predicate holding exactly one placeholder for the LIKE pattern.
type Field struct {
	Param  string
	Column string
	Kind   Kind
}

type Spec struct {
	Filters  []Field
	Search   []Field
	Ordering []Field
}

type Predicate struct {
	SQL  string
	Args []any
}

type Query struct {
	Predicates []Predicate
	Order      []string
}

// With returns a copy of the query narrowed by one more predicate.
func (q Query) With(predicate Predicate) Query {
	narrowed := Query{
		Predicates: make([]Predicate, 0, len(q.Predicates)+1),
		Order:      q.Order,
	}
	narrowed.Predicates = append(narrowed.Predicates, q.Predicates...)
	narrowed.Predicates = append(narrowed.Predicates, predicate)
	return narrowed
}

// ParamErrors collects malformed parameter values keyed by parameter name.
type ParamErrors map[string][]string

func (errs ParamErrors) Error() string {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, strings.Join(errs[key], " ")))
	}
	return "invalid query parameters: " + strings.Join(parts, "; ")
}

func (errs ParamErrors) add(param string, message string) {
	errs[param] = append(errs[param], message)
}

// Contains builds a case-insensitive substring predicate over a local column.
func Contains(param string, column string) Field {
	return Field{Param: param, Column: fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column)}
}

// ContainsVia builds a search field whose predicate reaches through a
// relation, e.g. a subquery on the owning user's name.
func ContainsVia(param string, predicate string) Field {
	return Field{Param: param, Column: predicate}
}

func Exact(param string, column string, kind Kind) Field {
	return Field{Param: param, Column: column, Kind: kind}
}

func Ordered(param string, column string) Field {
	return Field{Param: param, Column: column}
}

// Build validates the parameters against the allowlists and returns the
// predicates and ordering to apply. Parameters outside the allowlists are
// ignored.
func (spec Spec) Build(values url.Values) (Query, error) {
	result := Query{Predicates: make([]Predicate, 0)}
	problems := ParamErrors{}

	for _, field := range spec.Filters {
		raw, present := firstValue(values, field.Param)
		if !present {
			continue
		}
		value, err := parseValue(field.Kind, raw)
		if err != nil {
			problems.add(field.Param, err.Error())
			continue
		}
		result.Predicates = append(result.Predicates, Predicate{
			SQL:  field.Column + " = ?",
			Args: []any{value},
		})
	}

	if len(spec.Search) > 0 {
		raw, _ := firstValue(values, SearchParam)
		for _, term := range SearchTerms(raw) {
			result.Predicates = append(result.Predicates, searchPredicate(spec.Search, term))
		}
	}

	result.Order = spec.order(values.Get(OrderingParam))

	if len(problems) > 0 {
		return Query{}, problems
	}
	return result, nil
}

// SearchTerms splits a search parameter on whitespace and commas.
func SearchTerms(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			terms = append(terms, trimmed)
		}
	}
	return terms
}

func searchPredicate(fields []Field, term string) Predicate {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	clauses := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		clauses = append(clauses, field.Column)
		args = append(args, pattern)
	}
	return Predicate{
		SQL:  "(" + strings.Join(clauses, " OR ") + ")",
		Args: args,
	}
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func (spec Spec) order(raw string) []string {
	if len(spec.Ordering) == 0 || strings.TrimSpace(raw) == "" {
		return []string{defaultOrder}
	}

	allowed := make(map[string]string, len(spec.Ordering))
	for _, field := range spec.Ordering {
		allowed[field.Param] = field.Column
	}

	order := make([]string, 0)
	seen := make(map[string]struct{})
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		direction := "ASC"
		if strings.HasPrefix(token, "-") {
			direction = "DESC"
			token = strings.TrimPrefix(token, "-")
		}
		column, ok := allowed[token]
		if !ok {
			continue
		}
		if _, duplicate := seen[column]; duplicate {
			continue
		}
		seen[column] = struct{}{}
		order = append(order, column+" "+direction)
	}

	if _, hasID := seen["id"]; !hasID {
		order = append(order, defaultOrder)
	}
	return order
}

func firstValue(values url.Values, key string) (string, bool) {
	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return "", false
	}
	return strings.TrimSpace(raw[0]), true
}

func parseValue(kind Kind, raw string) (any, error) {
	switch kind {
	case KindID:
		return ParseID(raw)
	case KindDecimal:
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, valueError(MessageNotNumber)
		}
		return value, nil
	default:
		return raw, nil
	}
}
