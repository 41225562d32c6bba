package prose

import "strconv"

var numberWords = [...]string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight",
	"nine", "ten",
}

// NumberWord spells small numbers out in words. Values from zero to ten use
// the word itself, minus ten to minus one the word prefixed with "minus",
// and anything larger renders as a plain numeral.
func NumberWord(n int64) string {
	switch {
	case n >= 0 && n <= 10:
		return numberWords[n]
	case n >= -10 && n < 0:
		return "minus " + numberWords[-n]
	}
	return strconv.FormatInt(n, 10)
}
