package lexer

import (
	"github.com/gnoverse/regexr/internal/types"
)

// Lexer scans a pattern, expression or substitution string into a token
// arena. A Lexer is single-use; Parse is the usual entry point.
type Lexer struct {
	input []rune
	mode  Mode
	pos   int // current reading position in input
	limit int // end of the region being scanned

	res *ParseResult

	prev      TokenID
	stack     []TokenID // open groups
	set       TokenID   // open character set
	pending   TokenID   // '-' waiting for the right-hand side of a range
	backrefs  []TokenID
	captures  int // capture groups found by the pre-scan
	delimited bool
}

// Parse scans source in the given mode. It always returns a result; problems
// are attached to tokens and listed in Errors.
func Parse(source string, mode Mode) *ParseResult {
	return NewLexer(source, mode).Parse()
}

// NewLexer returns a lexer for input.
func NewLexer(input string, mode Mode) *Lexer {
	runes := []rune(input)
	return &Lexer{
		input:   runes,
		mode:    mode,
		limit:   len(runes),
		prev:    NoToken,
		set:     NoToken,
		pending: NoToken,
		res: &ParseResult{
			Source: input,
			Mode:   mode,
			Root:   NoToken,
			runes:  runes,
		},
	}
}

// Parse runs the scan and returns the result.
func (l *Lexer) Parse() *ParseResult {
	switch l.mode {
	case ModeSubstitution:
		l.scanSubstitution()
	case ModeExpression:
		l.scanExpression()
	default:
		l.scanPattern(0, len(l.input))
	}
	l.collectErrors()
	return l.res
}

// scanExpression handles /body/flags. Input without a leading slash is
// scanned as a bare pattern.
func (l *Lexer) scanExpression() {
	if len(l.input) == 0 || l.input[0] != '/' {
		l.scanPattern(0, len(l.input))
		return
	}
	l.emit(Token{Kind: KindOpen, I: 0, End: 1})

	closeAt := l.findClosingSlash()
	bodyEnd := len(l.input)
	if closeAt > 0 {
		bodyEnd = closeAt
	}

	l.delimited = true
	l.scanPattern(1, bodyEnd)
	l.delimited = false

	if closeAt <= 0 {
		return
	}
	l.emit(Token{Kind: KindClose, I: closeAt, End: closeAt + 1})
	for i := closeAt + 1; i < len(l.input); i++ {
		l.emit(Token{Kind: KindFlag, I: i, End: i + 1, Code: l.input[i], HasCode: true})
	}
	l.res.Flags = string(l.input[closeAt+1:])
}

// findClosingSlash returns the index of the last unescaped '/' after the
// opening one, or -1.
func (l *Lexer) findClosingSlash() int {
	for i := len(l.input) - 1; i > 0; i-- {
		if l.input[i] != '/' {
			continue
		}
		slashes := 0
		for j := i - 1; j > 0 && l.input[j] == '\\'; j-- {
			slashes++
		}
		if slashes%2 == 0 {
			return i
		}
	}
	return -1
}

// scanPattern scans input[from:to] with the pattern grammar and closes any
// structure left open at the end of the region.
func (l *Lexer) scanPattern(from, to int) {
	l.pos, l.limit = from, to
	l.captures = countCaptures(l.input[from:to])

	for l.pos < l.limit {
		c := l.input[l.pos]
		inSet := l.set != NoToken

		var id TokenID
		switch {
		case c == '\\':
			id = l.scanEscape()
		case inSet && c == ']':
			id = l.closeSet()
		case inSet:
			id = l.scanSetChar()
		case c == '(':
			id = l.openGroup()
		case c == ')':
			id = l.closeGroup()
		case c == '[':
			id = l.openSet()
		case c == '*':
			id = l.emitQuant(KindStar, 1, 0, -1)
		case c == '+':
			id = l.emitQuant(KindPlus, 1, 1, -1)
		case c == '?':
			id = l.scanQuestion()
		case c == '{':
			id = l.scanBrace()
		case c == '.':
			id = l.emitSimple(KindDot, ClassNone, 1)
		case c == '^':
			id = l.emitSimple(KindBOF, ClassAnchor, 1)
		case c == '$':
			id = l.emitSimple(KindEOF, ClassAnchor, 1)
		case c == '|':
			id = l.emitSimple(KindAlt, ClassNone, 1)
		default:
			id = l.emitChar(c, 1)
			if c == '/' && l.delimited {
				l.tok(id).Err = types.CodeFwdSlash
			}
		}

		l.afterToken(id)
		l.pos = l.tok(id).End
	}

	l.closeOpenStructures()
	l.linkBackrefs()
}

// emit appends t to the arena, wiring the sequential links and the default
// depth, and returns its id.
func (l *Lexer) emit(t Token) TokenID {
	id := TokenID(len(l.res.Tokens))
	t.ID = id
	t.Prev = l.prev
	t.Next = NoToken
	t.Open, t.Close = NoToken, NoToken
	t.Proxy, t.Target = NoToken, NoToken
	t.Depth = len(l.stack)
	if l.set != NoToken {
		t.Depth++
	}
	if l.mode == ModeSubstitution {
		t.Subst = true
	}

	l.res.Tokens = append(l.res.Tokens, t)
	if l.prev != NoToken {
		l.tok(l.prev).Next = id
	} else {
		l.res.Root = id
	}
	l.prev = id
	return id
}

func (l *Lexer) tok(id TokenID) *Token {
	return &l.res.Tokens[id]
}

func (l *Lexer) emitSimple(kind Kind, class Class, width int) TokenID {
	return l.emit(Token{Kind: kind, Class: class, I: l.pos, End: l.pos + width})
}

func (l *Lexer) emitChar(c rune, width int) TokenID {
	return l.emit(Token{Kind: KindChar, I: l.pos, End: l.pos + width, Code: c, HasCode: true})
}

func (l *Lexer) emitCode(kind Kind, code rune, width int) TokenID {
	return l.emit(Token{Kind: kind, Class: ClassEsc, I: l.pos, End: l.pos + width, Code: code, HasCode: true})
}

// afterToken runs the checks that depend on the token's predecessor:
// quantifier targets and pending ranges.
func (l *Lexer) afterToken(id TokenID) {
	t := l.tok(id)

	if t.Class == ClassQuant {
		target := l.quantTarget(t.Prev)
		if target == NoToken {
			t.Err = types.CodeQuantTarget
		} else {
			t.Target = target
		}
	}

	if l.pending != NoToken && l.pending != id {
		l.resolveRange(id)
	}
}

// quantTarget returns the token a quantifier following prev applies to.
func (l *Lexer) quantTarget(prev TokenID) TokenID {
	if prev == NoToken {
		return NoToken
	}
	p := l.tok(prev)
	switch {
	case p.Kind.IsCharLike(), p.Kind == KindDot, p.Kind == KindBackref:
		return prev
	case p.Kind >= KindWord && p.Kind <= KindNotWhitespace:
		return prev
	case p.Kind == KindSetClose, p.Kind == KindGroupClose:
		return p.Open
	}
	return NoToken
}

func (l *Lexer) emitQuant(kind Kind, width, lo, hi int) TokenID {
	return l.emit(Token{Kind: kind, Class: ClassQuant, I: l.pos, End: l.pos + width, Min: lo, Max: hi})
}

// scanQuestion distinguishes the optional quantifier from the lazy modifier.
func (l *Lexer) scanQuestion() TokenID {
	if l.prev != NoToken && l.tok(l.prev).Class == ClassQuant {
		target := l.prev
		id := l.emitSimple(KindLazy, ClassNone, 1)
		l.tok(id).Target = target
		return id
	}
	return l.emitQuant(KindOpt, 1, 0, 1)
}

// scanBrace reads {m}, {m,} or {m,n}. Anything else is a literal brace.
func (l *Lexer) scanBrace() TokenID {
	i := l.pos + 1
	lo, n := l.readInt(i)
	if n == 0 {
		return l.emitChar('{', 1)
	}
	i += n
	hi := lo
	if i < l.limit && l.input[i] == ',' {
		i++
		var m int
		hi, m = l.readInt(i)
		if m == 0 {
			hi = -1
		}
		i += m
	}
	if i >= l.limit || l.input[i] != '}' {
		return l.emitChar('{', 1)
	}

	id := l.emitQuant(KindQuant, i+1-l.pos, lo, hi)
	if hi != -1 && lo > hi {
		l.tok(id).Err = types.CodeQuantRev
	}
	return id
}

// readInt parses decimal digits at i, returning the value and digit count.
func (l *Lexer) readInt(i int) (int, int) {
	v, n := 0, 0
	for i+n < l.limit && isDigit(l.input[i+n]) {
		if v < 1<<20 {
			v = v*10 + int(l.input[i+n]-'0')
		}
		n++
	}
	return v, n
}

func (l *Lexer) openGroup() TokenID {
	kind, width := KindGroup, 1
	switch {
	case l.hasPrefix("(?:"):
		kind, width = KindNonCapGroup, 3
	case l.hasPrefix("(?="):
		kind, width = KindPosLookahead, 3
	case l.hasPrefix("(?!"):
		kind, width = KindNegLookahead, 3
	case l.hasPrefix("(?<="):
		kind, width = KindPosLookbehind, 4
	case l.hasPrefix("(?<!"):
		kind, width = KindNegLookbehind, 4
	}

	class := ClassGroup
	if kind.IsLookaround() {
		class = ClassLookaround
	}
	id := l.emitSimple(kind, class, width)
	t := l.tok(id)
	if kind == KindGroup {
		l.res.Groups = append(l.res.Groups, id)
		t.Num = len(l.res.Groups)
	}
	if kind == KindPosLookbehind || kind == KindNegLookbehind {
		t.Err = types.CodeLookbehind
	}
	l.stack = append(l.stack, id)
	return id
}

func (l *Lexer) closeGroup() TokenID {
	if len(l.stack) == 0 {
		id := l.emitSimple(KindGroupClose, ClassGroup, 1)
		l.tok(id).Err = types.CodeGroupClose
		return id
	}

	open := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]

	id := l.emitSimple(KindGroupClose, ClassNone, 1)
	t, o := l.tok(id), l.tok(open)
	t.Open = open
	o.Close = id
	t.Class = o.Class
	t.Depth = o.Depth
	return id
}

func (l *Lexer) openSet() TokenID {
	kind, width := KindSet, 1
	if l.hasPrefix("[^") {
		kind, width = KindSetNot, 2
	}
	id := l.emitSimple(kind, ClassSet, width)
	l.set = id
	return id
}

func (l *Lexer) closeSet() TokenID {
	open := l.set
	l.set = NoToken

	id := l.emitSimple(KindSetClose, ClassNone, 1)
	t, o := l.tok(id), l.tok(open)
	t.Open = open
	o.Close = id
	t.Class = o.Class
	t.Depth = o.Depth
	return id
}

// scanSetChar handles a literal inside a set, including a possible range dash.
func (l *Lexer) scanSetChar() TokenID {
	c := l.input[l.pos]
	if c != '-' || !l.canStartRange() {
		return l.emitChar(c, 1)
	}
	id := l.emit(Token{Kind: KindRange, I: l.pos, End: l.pos + 1, Code: '-', HasCode: true})
	l.pending = id
	return id
}

// canStartRange reports whether the token before a dash can be the low end
// of a range.
func (l *Lexer) canStartRange() bool {
	if l.prev == NoToken || l.prev == l.set {
		return false
	}
	p := l.tok(l.prev)
	return p.Kind.IsCharLike() && p.Proxy == NoToken
}

// resolveRange completes or demotes the pending dash once the token after it
// is known.
func (l *Lexer) resolveRange(next TokenID) {
	r := l.tok(l.pending)
	l.pending = NoToken

	n := l.tok(next)
	if !n.Kind.IsCharLike() || n.Err != types.CodeNone {
		l.demoteRange(r)
		return
	}

	low := l.tok(r.Prev)
	r.Class = ClassSet
	r.HasCode = false
	r.Set = []TokenID{low.ID, r.ID, n.ID}
	low.Proxy = r.ID
	n.Proxy = r.ID
	if low.Code > n.Code {
		r.Err = types.CodeRangeRev
	}
}

func (l *Lexer) demoteRange(r *Token) {
	r.Kind = KindChar
	r.Class = ClassNone
	r.Code = '-'
	r.HasCode = true
}

// closeOpenStructures flags openers left without a closer at the end of the
// scanned region.
func (l *Lexer) closeOpenStructures() {
	if l.pending != NoToken {
		l.demoteRange(l.tok(l.pending))
		l.pending = NoToken
	}
	if l.set != NoToken {
		l.tok(l.set).Err = types.CodeSetOpen
		l.set = NoToken
	}
	for i := len(l.stack) - 1; i >= 0; i-- {
		l.tok(l.stack[i]).Err = types.CodeGroupOpen
	}
	l.stack = l.stack[:0]
}

// linkBackrefs ties every backreference to its capture group in both
// directions.
func (l *Lexer) linkBackrefs() {
	for _, ref := range l.backrefs {
		r := l.tok(ref)
		group := l.res.Group(r.Num)
		if group == nil {
			continue
		}
		r.Related = append(r.Related, group.ID)
		group.Related = append(group.Related, ref)
	}
	l.backrefs = nil
}

// collectErrors lists token diagnostics in chain order.
func (l *Lexer) collectErrors() {
	for i := range l.res.Tokens {
		t := &l.res.Tokens[i]
		if t.Err == types.CodeNone {
			continue
		}
		l.res.Errors = append(l.res.Errors, types.Diagnostic{
			Code:  t.Err,
			Start: t.I,
			End:   t.End,
			Token: int(t.ID),
		})
	}
}

func (l *Lexer) hasPrefix(prefix string) bool {
	i := l.pos
	for _, r := range prefix {
		if i >= l.limit || l.input[i] != r {
			return false
		}
		i++
	}
	return true
}

// countCaptures counts capturing group openers so that backreferences can be
// recognised before the group they name has been scanned.
func countCaptures(src []rune) int {
	n := 0
	inSet := false
	for i := 0; i < len(src); i++ {
		switch c := src[i]; {
		case c == '\\':
			i++
		case inSet:
			if c == ']' {
				inSet = false
			}
		case c == '[':
			inSet = true
		case c == '(':
			if !isNonCapturingOpener(src[i:]) {
				n++
			}
		}
	}
	return n
}

// nonCapturingOpeners are the openGroup prefixes that take no capture number.
var nonCapturingOpeners = []string{"(?:", "(?=", "(?!", "(?<=", "(?<!"}

func isNonCapturingOpener(src []rune) bool {
	for _, prefix := range nonCapturingOpeners {
		if hasRunePrefix(src, prefix) {
			return true
		}
	}
	return false
}

func hasRunePrefix(src []rune, prefix string) bool {
	i := 0
	for _, r := range prefix {
		if i >= len(src) || src[i] != r {
			return false
		}
		i++
	}
	return true
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isOctal(c rune) bool { return c >= '0' && c <= '7' }

func isHex(c rune) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c rune) rune {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isASCIILetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
