package lexer

import (
	"github.com/gnoverse/regexr/internal/types"
)

// simple single-letter escapes shared by patterns and substitutions
var controlEscapes = map[rune]rune{
	't': '\t',
	'n': '\n',
	'v': '\v',
	'f': '\f',
	'r': '\r',
}

var classEscapes = map[rune]Kind{
	'd': KindDigit,
	'D': KindNotDigit,
	'w': KindWord,
	'W': KindNotWord,
	's': KindWhitespace,
	'S': KindNotWhitespace,
}

// scanEscape reads a backslash sequence in pattern context.
func (l *Lexer) scanEscape() TokenID {
	inSet := l.set != NoToken
	if l.pos+1 >= l.limit {
		id := l.emitSimple(KindEsc, ClassEsc, 1)
		l.tok(id).Err = types.CodeEscOpen
		return id
	}

	c := l.input[l.pos+1]
	if !inSet && c >= '1' && c <= '9' {
		if num, width := l.backrefAt(l.pos + 1); width > 0 {
			id := l.emitSimple(KindBackref, ClassNone, 1+width)
			l.tok(id).Num = num
			l.backrefs = append(l.backrefs, id)
			return id
		}
	}

	if kind, ok := classEscapes[c]; ok {
		return l.emitSimple(kind, ClassCharClass, 2)
	}
	if code, ok := controlEscapes[c]; ok {
		return l.emitCode(KindEsc, code, 2)
	}

	switch {
	case c == 'b' && inSet:
		return l.emitCode(KindEsc, '\b', 2)
	case c == 'b':
		return l.emitSimple(KindWordBoundary, ClassAnchor, 2)
	case c == 'B' && !inSet:
		return l.emitSimple(KindNotWordBoundary, ClassAnchor, 2)
	case c == '0' && (l.pos+2 >= l.limit || !isDigit(l.input[l.pos+2])):
		return l.emitCode(KindEsc, 0, 2)
	case isOctal(c):
		code, width := l.readOctal(l.pos + 1)
		return l.emitCode(KindEscOctal, code, 1+width)
	case c == 'x':
		if code, ok := l.readHex(l.pos+2, 2); ok {
			return l.emitCode(KindEscHex, code, 4)
		}
	case c == 'u':
		if code, ok := l.readHex(l.pos+2, 4); ok {
			return l.emitCode(KindEscUnicode, code, 6)
		}
	case c == 'c':
		if l.pos+2 < l.limit && isASCIILetter(l.input[l.pos+2]) {
			return l.emitCode(KindEscControl, l.input[l.pos+2]%32, 3)
		}
	case !isASCIILetter(c) && !isDigit(c):
		// identity escape of a syntax or punctuation character
		return l.emitCode(KindEsc, c, 2)
	}

	id := l.emitCode(KindEsc, c, 2)
	l.tok(id).Err = types.CodeEscBad
	return id
}

// backrefAt resolves the digits at i against the pre-scanned capture count.
// Two digits are used when they name an existing group, otherwise one.
func (l *Lexer) backrefAt(i int) (num, width int) {
	first := int(l.input[i] - '0')
	if i+1 < l.limit && isDigit(l.input[i+1]) {
		two := first*10 + int(l.input[i+1]-'0')
		if two <= l.captures {
			return two, 2
		}
	}
	if first <= l.captures {
		return first, 1
	}
	return 0, 0
}

// readOctal reads up to three octal digits at i with a value of at most 0377.
func (l *Lexer) readOctal(i int) (rune, int) {
	var code rune
	n := 0
	for n < 3 && i+n < l.limit && isOctal(l.input[i+n]) {
		next := code*8 + (l.input[i+n] - '0')
		if next > 0377 {
			break
		}
		code = next
		n++
	}
	return code, n
}

// readHex reads exactly n hex digits at i.
func (l *Lexer) readHex(i, n int) (rune, bool) {
	if i+n > l.limit {
		return 0, false
	}
	var code rune
	for j := 0; j < n; j++ {
		c := l.input[i+j]
		if !isHex(c) {
			return 0, false
		}
		code = code*16 + hexValue(c)
	}
	return code, true
}
