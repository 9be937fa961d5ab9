package facts

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a decoded program location such as Mid(bb12[3]).
type Point struct {
	Level  string `json:"level"`  // Start or Mid
	Block  string `json:"block"`  // basic block id, kept textual
	Offset int    `json:"offset"` // statement index within the block
}

func (p Point) String() string {
	return fmt.Sprintf("%s(bb%s[%d])", p.Level, p.Block, p.Offset)
}

var quoteStripper = strings.NewReplacer(`\`, "", `'`, "", `"`, "")

// ParsePoint decodes a raw point field. Backslashes and quote characters are
// removed first, then the remainder must match <word>(bb<digits>[<digits>]).
func ParsePoint(raw string) (Point, error) {
	s := quoteStripper.Replace(raw)
	fail := func(reason string) (Point, error) {
		return Point{}, &MalformedPointError{Raw: raw, Reason: reason}
	}

	open := strings.IndexByte(s, '(')
	if open < 0 {
		return fail("missing '('")
	}
	level := s[:open]
	if level == "" {
		return fail("empty kind")
	}
	for i := 0; i < len(level); i++ {
		if !isWordByte(level[i]) {
			return fail(fmt.Sprintf("invalid kind character %q", level[i]))
		}
	}

	rest, ok := strings.CutPrefix(s[open+1:], "bb")
	if !ok {
		return fail("missing 'bb' block prefix")
	}
	block, rest := leadingDigits(rest)
	if block == "" {
		return fail("missing block number")
	}
	rest, ok = strings.CutPrefix(rest, "[")
	if !ok {
		return fail("missing '['")
	}
	offset, rest := leadingDigits(rest)
	if offset == "" {
		return fail("missing statement offset")
	}
	if rest != "])" {
		return fail(fmt.Sprintf("unexpected trailer %q", rest))
	}

	n, err := strconv.Atoi(offset)
	if err != nil {
		return fail(err.Error())
	}
	return Point{Level: level, Block: block, Offset: n}, nil
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func leadingDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}
