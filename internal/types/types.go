package types

import (
	"fmt"
	"strings"
)

// Code identifies a diagnostic kind. The string values are a stable contract
// shared with documentation content and callers.
type Code string

const (
	CodeNone        Code = ""
	CodeGroupOpen   Code = "groupopen"
	CodeGroupClose  Code = "groupclose"
	CodeQuantTarget Code = "quanttarg"
	CodeSetOpen     Code = "setopen"
	CodeEscOpen     Code = "esccharopen"
	CodeQuantRev    Code = "quantrev"
	CodeRangeRev    Code = "rangerev"
	CodeLookbehind  Code = "lookbehind"
	CodeFwdSlash    Code = "fwdslash"
	CodeEscBad      Code = "esccharbad"
	CodeInfinite    Code = "infinite"
	CodeTimeout     Code = "timeout"
)

// Codes lists every diagnostic kind in declaration order.
var Codes = []Code{
	CodeGroupOpen,
	CodeGroupClose,
	CodeQuantTarget,
	CodeSetOpen,
	CodeEscOpen,
	CodeQuantRev,
	CodeRangeRev,
	CodeLookbehind,
	CodeFwdSlash,
	CodeEscBad,
	CodeInfinite,
	CodeTimeout,
}

func (c Code) String() string { return string(c) }

// IsMatchTime reports whether the code is produced by match execution
// rather than by the lexer.
func (c Code) IsMatchTime() bool {
	return c == CodeInfinite || c == CodeTimeout
}

// ParseCode returns the code named by s.
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	for _, c := range Codes {
		if string(c) == s {
			return c, nil
		}
	}
	return CodeNone, fmt.Errorf("unknown diagnostic code: %q", s)
}

// Diagnostic is a lexer or match-time problem attached to a rune range of the
// input. It carries no free text; descriptions come from the docs package.
type Diagnostic struct {
	Code  Code
	Start int
	End   int
	Token int // arena index of the offending token, -1 for match-time diagnostics
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s[%d:%d]", d.Code, d.Start, d.End)
}
