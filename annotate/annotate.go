// Package annotate maps offsets in a pattern or sample text to the tokens and
// matches found there, and resolves what an interaction with a token should
// highlight or document.
package annotate

import (
	"sort"

	"github.com/gnoverse/regexr/executor"
	"github.com/gnoverse/regexr/lexer"
)

// TokenAt returns the first token in chain order whose range contains
// offset. The end boundary counts only when inclusive is set. The returned
// pointer refers into res and is stable across calls.
func TokenAt(res *lexer.ParseResult, offset int, inclusive bool) *lexer.Token {
	if res == nil {
		return nil
	}
	for t := res.First(); t != nil; t = res.Token(t.Next) {
		if t.I > offset {
			break
		}
		if t.Contains(offset, inclusive) {
			return t
		}
	}
	return nil
}

// MatchAt is TokenAt over a match list.
func MatchAt(list executor.MatchList, offset int, inclusive bool) *executor.Record {
	for i := range list {
		rec := &list[i]
		if rec.Start > offset {
			break
		}
		if offset < rec.End || (inclusive && offset == rec.End) {
			return rec
		}
	}
	return nil
}

// Span is a half-open rune range.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// Selection is what selecting a token highlights: the construct the token
// belongs to, and the constructs linked to it.
type Selection struct {
	Token   *lexer.Token
	Primary Span
	Related []Span
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return s.Token == nil }

// Spans returns the primary and related spans sorted by start, without
// duplicates.
func (s Selection) Spans() []Span {
	if s.Empty() {
		return nil
	}
	all := make([]Span, 0, len(s.Related)+1)
	all = append(all, s.Primary)
	all = append(all, s.Related...)
	sort.Slice(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].End < all[j].End
	})

	out := all[:1]
	for _, sp := range all[1:] {
		if sp != out[len(out)-1] {
			out = append(out, sp)
		}
	}
	return out
}

// Select resolves the highlight for tok. A closer selects its whole
// construct, a range endpoint or dash selects the whole range, and the
// tokens in Related (plus a quantifier's target) are highlighted alongside.
func Select(res *lexer.ParseResult, tok *lexer.Token) Selection {
	if res == nil || tok == nil {
		return Selection{}
	}
	if p := res.Token(tok.Proxy); p != nil {
		tok = p
	}
	if open := res.Token(tok.Open); open != nil {
		tok = open
	}

	sel := Selection{Token: tok, Primary: span(res, tok)}
	for _, rel := range related(res, tok) {
		sel.Related = append(sel.Related, span(res, rel))
	}
	if target := res.Token(tok.Target); target != nil {
		sel.Related = append(sel.Related, span(res, target))
	}
	return sel
}

// related walks the Related links from t. A backreference reaches its group
// and, through it, the other references to the same group.
func related(res *lexer.ParseResult, t *lexer.Token) []*lexer.Token {
	seen := map[lexer.TokenID]bool{t.ID: true}
	queue := []*lexer.Token{t}
	var out []*lexer.Token
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, id := range cur.Related {
			rel := res.Token(id)
			if rel == nil || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, rel)
			queue = append(queue, rel)
		}
	}
	return out
}

// span returns the range drawn for t: from t to its closer, or across its
// set aggregate.
func span(res *lexer.ParseResult, t *lexer.Token) Span {
	if len(t.Set) > 0 {
		first, last := res.Token(t.Set[0]), res.Token(t.Set[len(t.Set)-1])
		if first != nil && last != nil {
			return Span{Start: first.I, End: last.End}
		}
	}
	end := t
	if c := res.Token(t.Close); c != nil {
		end = c
	}
	return Span{Start: t.I, End: end.End}
}

// Hover returns the token whose documentation should be shown for tok:
// markers resolve to the construct they stand for, closers to their
// opener.
func Hover(res *lexer.ParseResult, tok *lexer.Token) *lexer.Token {
	if res == nil || tok == nil {
		return nil
	}
	if p := res.Token(tok.Proxy); p != nil {
		tok = p
	}
	if o := res.Token(tok.Open); o != nil {
		tok = o
	}
	return tok
}
