package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// Criteria select records by content: conditions of the form
// "key op literal" with op in =, !=, >, >=, <, <=, combined with "and"
// and "or" ("and" binds tighter). String literals may be single or double
// quoted; bare literals are parsed as bool, integer, float, link (@N),
// then string, in that order.

type condition struct {
	key string
	op  string
	val types.Value
}

// criteria is a disjunction of conjunctions.
type criteria [][]condition

func parseCriteria(text string) (criteria, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty criteria")
	}

	var (
		out    criteria
		clause []condition
	)
	i := 0
	for {
		if i+3 > len(tokens) {
			return nil, fmt.Errorf("criteria %q: incomplete condition", text)
		}
		cond, err := parseCondition(tokens[i], tokens[i+1], tokens[i+2])
		if err != nil {
			return nil, fmt.Errorf("criteria %q: %w", text, err)
		}
		clause = append(clause, cond)
		i += 3

		if i == len(tokens) {
			out = append(out, clause)
			return out, nil
		}
		switch strings.ToLower(tokens[i]) {
		case "and":
			i++
		case "or":
			out = append(out, clause)
			clause = nil
			i++
		default:
			return nil, fmt.Errorf("criteria %q: expected and/or, got %q", text, tokens[i])
		}
	}
}

func parseCondition(key, op, lit string) (condition, error) {
	switch op {
	case "=", "==", "!=", ">", ">=", "<", "<=":
	default:
		return condition{}, fmt.Errorf("unknown operator %q", op)
	}
	if op == "==" {
		op = "="
	}
	return condition{key: key, op: op, val: parseLiteral(lit)}, nil
}

func parseLiteral(lit string) types.Value {
	if len(lit) >= 2 {
		if (lit[0] == '"' && lit[len(lit)-1] == '"') || (lit[0] == '\'' && lit[len(lit)-1] == '\'') {
			return types.String(lit[1 : len(lit)-1])
		}
	}
	switch lit {
	case "true":
		return types.Bool(true)
	case "false":
		return types.Bool(false)
	}
	if strings.HasPrefix(lit, "@") {
		if id, err := strconv.ParseInt(lit[1:], 10, 64); err == nil {
			return types.LinkTo(id)
		}
	}
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return types.Int(i)
	}
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		return types.Float(f)
	}
	return types.String(lit)
}

// tokenize splits on whitespace, keeping quoted strings (with their
// quotes) as single tokens.
func tokenize(text string) ([]string, error) {
	var (
		tokens []string
		cur    strings.Builder
		quote  rune
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	flush()
	return tokens, nil
}

// matchCriteria returns the records in st satisfying the criteria, sorted.
func matchCriteria(st state, text string) ([]int64, error) {
	c, err := parseCriteria(text)
	if err != nil {
		return nil, err
	}
	var out []int64
	for _, record := range st.recordIDs() {
		if c.matches(st, record) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (c criteria) matches(st state, record int64) bool {
	for _, clause := range c {
		ok := true
		for _, cond := range clause {
			if !cond.matches(st.values(record, cond.key)) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// matches reports whether any stored value satisfies the condition.
func (c condition) matches(vals []types.Value) bool {
	for _, v := range vals {
		cmp, cmpOK := v.Compare(c.val)
		switch c.op {
		case "=":
			if v.Equal(c.val) || (cmpOK && cmp == 0) {
				return true
			}
		case "!=":
			if !v.Equal(c.val) && (!cmpOK || cmp != 0) {
				return true
			}
		case ">":
			if cmpOK && cmp > 0 {
				return true
			}
		case ">=":
			if cmpOK && cmp >= 0 {
				return true
			}
		case "<":
			if cmpOK && cmp < 0 {
				return true
			}
		case "<=":
			if cmpOK && cmp <= 0 {
				return true
			}
		}
	}
	return false
}
