package lexer

import (
	"fmt"

	"github.com/gnoverse/regexr/internal/types"
)

// TokenID addresses a token inside a ParseResult arena.
type TokenID int

// NoToken marks an absent relationship.
const NoToken TokenID = -1

// Mode selects the grammar used by Parse.
type Mode int

const (
	ModePattern      Mode = iota // bare pattern body, no delimiters
	ModeExpression               // slash-delimited literal: /body/flags
	ModeSubstitution             // replacement string
)

func (m Mode) String() string {
	switch m {
	case ModePattern:
		return "pattern"
	case ModeExpression:
		return "expression"
	case ModeSubstitution:
		return "substitution"
	default:
		return "unknown"
	}
}

// Kind is the semantic type of a token. Its string form doubles as the
// documentation id of the construct.
type Kind int

const (
	KindChar Kind = iota
	KindEsc
	KindEscOctal
	KindEscHex
	KindEscUnicode
	KindEscControl
	KindDot
	KindWord
	KindNotWord
	KindDigit
	KindNotDigit
	KindWhitespace
	KindNotWhitespace
	KindSet
	KindSetNot
	KindSetClose
	KindRange
	KindGroup
	KindNonCapGroup
	KindPosLookahead
	KindNegLookahead
	KindPosLookbehind
	KindNegLookbehind
	KindGroupClose
	KindBackref
	KindPlus
	KindStar
	KindOpt
	KindQuant
	KindLazy
	KindAlt
	KindBOF
	KindEOF
	KindWordBoundary
	KindNotWordBoundary
	KindOpen
	KindClose
	KindFlag
	KindSubstMatch
	KindSubstNum
	KindSubstPre
	KindSubstPost
	KindSubstDollar
)

var kindNames = [...]string{
	KindChar:            "char",
	KindEsc:             "esc",
	KindEscOctal:        "escoctal",
	KindEscHex:          "eschexadecimal",
	KindEscUnicode:      "escunicode",
	KindEscControl:      "esccontrolchar",
	KindDot:             "dot",
	KindWord:            "word",
	KindNotWord:         "notword",
	KindDigit:           "digit",
	KindNotDigit:        "notdigit",
	KindWhitespace:      "whitespace",
	KindNotWhitespace:   "notwhitespace",
	KindSet:             "set",
	KindSetNot:          "setnot",
	KindSetClose:        "setclose",
	KindRange:           "range",
	KindGroup:           "group",
	KindNonCapGroup:     "noncapgroup",
	KindPosLookahead:    "poslookahead",
	KindNegLookahead:    "neglookahead",
	KindPosLookbehind:   "poslookbehind",
	KindNegLookbehind:   "neglookbehind",
	KindGroupClose:      "groupclose",
	KindBackref:         "backref",
	KindPlus:            "plus",
	KindStar:            "star",
	KindOpt:             "opt",
	KindQuant:           "quant",
	KindLazy:            "lazy",
	KindAlt:             "alt",
	KindBOF:             "bof",
	KindEOF:             "eof",
	KindWordBoundary:    "wordboundary",
	KindNotWordBoundary: "notwordboundary",
	KindOpen:            "open",
	KindClose:           "close",
	KindFlag:            "flag",
	KindSubstMatch:      "subst_match",
	KindSubstNum:        "subst_num",
	KindSubstPre:        "subst_pre",
	KindSubstPost:       "subst_post",
	KindSubstDollar:     "subst_$",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsGroupOpener reports whether k opens a parenthesised construct.
func (k Kind) IsGroupOpener() bool {
	return k >= KindGroup && k <= KindNegLookbehind
}

// IsLookaround reports whether k opens a zero-width assertion group.
func (k Kind) IsLookaround() bool {
	return k >= KindPosLookahead && k <= KindNegLookbehind
}

// IsCharLike reports whether tokens of kind k denote a single character code.
func (k Kind) IsCharLike() bool {
	return k >= KindChar && k <= KindEscControl
}

// Class is a presentational grouping of kinds. It never drives semantic lookups.
type Class string

const (
	ClassNone       Class = ""
	ClassQuant      Class = "quant"
	ClassEsc        Class = "esc"
	ClassSet        Class = "set"
	ClassGroup      Class = "group"
	ClassLookaround Class = "lookaround"
	ClassAnchor     Class = "anchor"
	ClassCharClass  Class = "charclass"
	ClassSubst      Class = "subst"
)

// Token is one lexical unit. Relationships are arena indices into the owning
// ParseResult; NoToken means absent.
type Token struct {
	ID    TokenID
	Kind  Kind
	Class Class

	I     int // start rune offset
	End   int // exclusive end rune offset
	Depth int

	Num      int // capture ordinal (groups) or referenced ordinal (backrefs, $N)
	Min, Max int // quantifier bounds, Max == -1 when unbounded
	Code     rune
	HasCode  bool
	Subst    bool // token belongs to a substitution string
	Err      types.Code
	Label    string

	Next, Prev  TokenID
	Open, Close TokenID
	Proxy       TokenID
	Target      TokenID // quantified token for quantifiers and lazy modifiers
	Set         []TokenID
	Related     []TokenID
}

// Len returns the number of runes covered by the token.
func (t *Token) Len() int { return t.End - t.I }

// Contains reports whether offset falls inside [I, End), or [I, End] when
// inclusive is set.
func (t *Token) Contains(offset int, inclusive bool) bool {
	if offset < t.I {
		return false
	}
	if inclusive {
		return offset <= t.End
	}
	return offset < t.End
}

func (t *Token) String() string {
	s := fmt.Sprintf("%s[%d:%d]", t.Kind, t.I, t.End)
	if t.Err != types.CodeNone {
		s += "!" + t.Err.String()
	}
	return s
}

// ParseResult owns the token arena and the diagnostics of one Parse call.
type ParseResult struct {
	Source string
	Mode   Mode
	Tokens []Token
	Errors []types.Diagnostic
	Root   TokenID
	Groups []TokenID // capture group openers by ordinal - 1
	Flags  string    // flag letters of a slash-delimited expression

	runes []rune
}

// Token returns the token with the given id, or nil.
func (r *ParseResult) Token(id TokenID) *Token {
	if r == nil || id < 0 || int(id) >= len(r.Tokens) {
		return nil
	}
	return &r.Tokens[id]
}

// First returns the head of the chain, or nil for empty input.
func (r *ParseResult) First() *Token {
	return r.Token(r.Root)
}

// Text returns the source text covered by t.
func (r *ParseResult) Text(t *Token) string {
	if t == nil || t.I < 0 || t.End > len(r.runes) || t.I > t.End {
		return ""
	}
	return string(r.runes[t.I:t.End])
}

// Len returns the input length in runes.
func (r *ParseResult) Len() int { return len(r.runes) }

// HasErrors reports whether the lexer attached any diagnostic.
func (r *ParseResult) HasErrors() bool { return len(r.Errors) > 0 }

// Group returns the opener of capture group num (1-based), or nil.
func (r *ParseResult) Group(num int) *Token {
	if num < 1 || num > len(r.Groups) {
		return nil
	}
	return r.Token(r.Groups[num-1])
}

// Body returns the pattern body, without the delimiters and flags of a
// slash-delimited expression.
func (r *ParseResult) Body() string {
	if r.Mode != ModeExpression || len(r.Tokens) == 0 || r.Tokens[0].Kind != KindOpen {
		return r.Source
	}
	end := len(r.runes)
	for i := len(r.Tokens) - 1; i >= 0; i-- {
		if r.Tokens[i].Kind == KindClose {
			end = r.Tokens[i].I
			break
		}
	}
	return string(r.runes[1:end])
}
