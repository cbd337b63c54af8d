/*
Package lexer scans JavaScript-flavoured regular expressions and substitution
strings into a token graph suitable for interactive highlighting.

# Token arena

Parse returns a ParseResult owning every token in a single slice. Tokens refer
to each other by TokenID rather than by pointer:

  - Next/Prev: total order over the whole input, offsets non-decreasing
  - Open/Close: a group or set opener and its closer
  - Set: tokens highlighted as one unit (a range a-z is three tokens)
  - Related: symmetric links between a capture group and its backreferences
  - Proxy: the logical construct a marker stands for (range endpoints point
    at the range token)
  - Target: the token a quantifier or lazy modifier applies to

# Diagnostics

Malformed input never stops the scan. Every rune of the input is covered by
some token and problems are attached to the offending token as a types.Code:

	res := lexer.Parse("(a", lexer.ModePattern)
	// res.Errors == [{groupopen 0 1 0}]

# Modes

  - ModePattern: a bare pattern body
  - ModeExpression: a /body/flags literal; adds open, close and flag tokens
    and reports unescaped slashes in the body
  - ModeSubstitution: a replacement string with $&, $1, $`, $' and $$
*/
package lexer
