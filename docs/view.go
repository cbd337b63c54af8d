package docs

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/gnoverse/regexr/lexer"
)

// View is the data a documentation template is executed against. Which
// fields are set depends on the token kind:
//
//   - char-like tokens: Code
//   - quantifiers: Min, Max (Max == -1 when unbounded)
//   - groups: Num
//   - range: Prev and Next, the endpoints
//   - backreferences and $N: Group, the referenced capture group
type View struct {
	Kind  string
	Text  string
	Label string
	Code  int
	Num   int
	Min   int
	Max   int

	Prev  *View
	Next  *View
	Group *View
}

func newView(res *lexer.ParseResult, tok *lexer.Token) *View {
	v := baseView(res, tok)
	switch tok.Kind {
	case lexer.KindRange:
		if len(tok.Set) == 3 {
			v.Prev = baseView(res, res.Token(tok.Set[0]))
			v.Next = baseView(res, res.Token(tok.Set[2]))
		}
	case lexer.KindBackref, lexer.KindSubstNum:
		if g := res.Group(tok.Num); g != nil {
			v.Group = baseView(res, g)
		} else {
			v.Group = &View{Kind: lexer.KindGroup.String(), Num: tok.Num}
		}
	}
	return v
}

func baseView(res *lexer.ParseResult, tok *lexer.Token) *View {
	if tok == nil {
		return nil
	}
	return &View{
		Kind:  tok.Kind.String(),
		Text:  res.Text(tok),
		Label: tok.Label,
		Code:  int(tok.Code),
		Num:   tok.Num,
		Min:   tok.Min,
		Max:   tok.Max,
	}
}

// names of the non-printing characters by code
var nonPrinting = map[rune]string{
	0: "NULL", 1: "SOH", 2: "STX", 3: "ETX", 4: "EOT", 5: "ENQ", 6: "ACK",
	7: "BELL", 8: "BS", 9: "TAB", 10: "LINE FEED", 11: "VERTICAL TAB",
	12: "FORM FEED", 13: "CARRIAGE RETURN", 14: "SO", 15: "SI", 16: "DLE",
	17: "DC1", 18: "DC2", 19: "DC3", 20: "DC4", 21: "NAK", 22: "SYN",
	23: "ETB", 24: "CAN", 25: "EM", 26: "SUB", 27: "ESC", 28: "FS", 29: "GS",
	30: "RS", 31: "US", 32: "SPACE", 127: "DEL",
}

var funcs = template.FuncMap{
	"quant": quantPhrase,
	"char":  charName,
	"upper": strings.ToUpper,
}

// quantPhrase renders quantifier bounds: "3", "3 or more", "between 1 and 3".
func quantPhrase(v *View) (string, error) {
	if v == nil {
		return "", fmt.Errorf("quant: no token")
	}
	switch {
	case v.Min == v.Max:
		return fmt.Sprint(v.Min), nil
	case v.Max == -1:
		return fmt.Sprintf("%d or more", v.Min), nil
	default:
		return fmt.Sprintf("between %d and %d", v.Min, v.Max), nil
	}
}

// charName renders a character code as its non-printing name or as the
// quoted glyph.
func charName(v *View) (string, error) {
	if v == nil {
		return "", fmt.Errorf("char: no token")
	}
	if name, ok := nonPrinting[rune(v.Code)]; ok {
		return name, nil
	}
	return fmt.Sprintf(`"%c"`, rune(v.Code)), nil
}
