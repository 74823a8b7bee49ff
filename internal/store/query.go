package store

import (
	"context"
	"encoding/json"
	"strings"
)

// Query describes a declarative result set over one typed table. Where
// conditions on indexed fields are pushed down to the backend; conditions on
// unindexed fields, and Match predicates, degrade to a table scan with
// client-side filtering. Results are materialized eagerly at call time.
type Query[T any] struct {
	Where   []Where
	Match   func(T) bool
	OrderBy string
	Desc    bool
	Limit   int
}

// Query evaluates q and returns the finite result set.
func (t *Table[T]) Query(ctx context.Context, q Query[T]) ([]T, error) {
	pushdown := q.Match == nil
	for _, w := range q.Where {
		if !t.store.registry.Indexed(t.name, w.Field) {
			pushdown = false
			break
		}
	}

	raw := RawQuery{OrderBy: q.OrderBy, Desc: q.Desc}
	if pushdown {
		raw.Where = q.Where
		raw.Limit = q.Limit
	}
	rows, err := t.store.List(ctx, t.name, raw)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if !pushdown && !matchRaw(row.Data, q.Where) {
			continue
		}
		rec, err := decode[T](row.Data)
		if err != nil {
			return nil, err
		}
		if q.Match != nil && !q.Match(*rec) {
			continue
		}
		out = append(out, *rec)
		if !pushdown && q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// matchRaw applies Where conditions against the raw JSON document, for the
// scan path where the backend could not evaluate them.
func matchRaw(data []byte, where []Where) bool {
	if len(where) == 0 {
		return true
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	return MatchDocument(doc, where)
}

// MatchDocument evaluates Where conditions against a decoded document. The
// remote backend reuses it for client-side filtering.
func MatchDocument(doc map[string]any, where []Where) bool {
	for _, w := range where {
		got, ok := doc[w.Field]
		if !ok {
			return false
		}
		cmp, ok := CompareValues(got, w.Value)
		if !ok {
			return false
		}
		switch w.Op {
		case OpEq:
			if cmp != 0 {
				return false
			}
		case OpGte:
			if cmp < 0 {
				return false
			}
		case OpLte:
			if cmp > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// CompareValues orders two JSON-typed values of the same kind. The second
// return value is false when the kinds are not comparable.
func CompareValues(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	case nil:
		if b == nil {
			return 0, true
		}
		return 0, false
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
