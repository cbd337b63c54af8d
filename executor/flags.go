package executor

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Flags is the set of expression flags the executor understands.
type Flags uint8

const (
	FlagGlobal Flags = 1 << iota
	FlagIgnoreCase
	FlagMultiline
)

var flagLetters = []struct {
	flag   Flags
	letter byte
}{
	{FlagGlobal, 'g'},
	{FlagIgnoreCase, 'i'},
	{FlagMultiline, 'm'},
}

// ParseFlags reads a flag string such as "gi". Repeated letters are
// accepted; unknown letters are an error.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for i := 0; i < len(s); i++ {
		known := false
		for _, fl := range flagLetters {
			if s[i] == fl.letter {
				f |= fl.flag
				known = true
				break
			}
		}
		if !known {
			return 0, fmt.Errorf("unknown flag %q in %q", s[i], s)
		}
	}
	return f, nil
}

// Global reports whether the g flag is set.
func (f Flags) Global() bool { return f&FlagGlobal != 0 }

func (f Flags) String() string {
	var sb strings.Builder
	for _, fl := range flagLetters {
		if f&fl.flag != 0 {
			sb.WriteByte(fl.letter)
		}
	}
	return sb.String()
}

// options maps the flags onto the engine. ECMAScript mode only combines
// with IgnoreCase and Multiline.
func (f Flags) options() regexp2.RegexOptions {
	opt := regexp2.RegexOptions(regexp2.ECMAScript)
	if f&FlagIgnoreCase != 0 {
		opt |= regexp2.IgnoreCase
	}
	if f&FlagMultiline != 0 {
		opt |= regexp2.Multiline
	}
	return opt
}
