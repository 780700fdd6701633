package text

import "unicode"

// WordCount measures mixed Chinese/English text: every CJK ideograph
// counts as one word, any other run of non-space characters counts as
// one token. "明日天氣 very hot" is 4 + 2.
func WordCount(s string) int {
	n := 0
	inToken := false
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Han, r):
			n++
			inToken = false
		case unicode.IsSpace(r):
			inToken = false
		default:
			if !inToken {
				n++
				inToken = true
			}
		}
	}
	return n
}
