package lexer

import (
	"github.com/gnoverse/regexr/internal/types"
)

// scanSubstitution tokenizes a replacement string: $-references plus the
// escapes of a JavaScript string literal.
func (l *Lexer) scanSubstitution() {
	l.pos, l.limit = 0, len(l.input)
	for l.pos < l.limit {
		var id TokenID
		switch c := l.input[l.pos]; c {
		case '$':
			id = l.scanDollar()
		case '\\':
			id = l.scanStringEscape()
		default:
			id = l.emitChar(c, 1)
		}
		l.pos = l.tok(id).End
	}
}

func (l *Lexer) scanDollar() TokenID {
	if l.pos+1 >= l.limit {
		return l.emitChar('$', 1)
	}
	switch c := l.input[l.pos+1]; {
	case c == '&':
		return l.emitSimple(KindSubstMatch, ClassSubst, 2)
	case c == '`':
		return l.emitSimple(KindSubstPre, ClassSubst, 2)
	case c == '\'':
		return l.emitSimple(KindSubstPost, ClassSubst, 2)
	case c == '$':
		return l.emitSimple(KindSubstDollar, ClassSubst, 2)
	case isDigit(c):
		num, width := int(c-'0'), 1
		if l.pos+2 < l.limit && isDigit(l.input[l.pos+2]) {
			num, width = num*10+int(l.input[l.pos+2]-'0'), 2
		}
		if num == 0 {
			return l.emitChar('$', 1)
		}
		id := l.emitSimple(KindSubstNum, ClassSubst, 1+width)
		l.tok(id).Num = num
		return id
	}
	return l.emitChar('$', 1)
}

// scanStringEscape reads a backslash sequence of a string literal.
func (l *Lexer) scanStringEscape() TokenID {
	if l.pos+1 >= l.limit {
		id := l.emitSimple(KindEsc, ClassEsc, 1)
		l.tok(id).Err = types.CodeEscOpen
		return id
	}

	c := l.input[l.pos+1]
	if code, ok := controlEscapes[c]; ok {
		return l.emitCode(KindEsc, code, 2)
	}
	switch c {
	case '0':
		return l.emitCode(KindEsc, 0, 2)
	case 'x':
		if code, ok := l.readHex(l.pos+2, 2); ok {
			return l.emitCode(KindEscHex, code, 4)
		}
	case 'u':
		if code, ok := l.readHex(l.pos+2, 4); ok {
			return l.emitCode(KindEscUnicode, code, 6)
		}
	default:
		return l.emitCode(KindEsc, c, 2)
	}

	id := l.emitCode(KindEsc, c, 2)
	l.tok(id).Err = types.CodeEscBad
	return id
}
