package narrator

import (
	"strconv"
	"strings"
)

var numberWords = func() [100]string {
	ones := []string{"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}
	tens := []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

	var w [100]string
	for i := 1; i < 100; i++ {
		switch {
		case i < 20:
			w[i] = ones[i]
		case i%10 == 0:
			w[i] = tens[i/10]
		default:
			w[i] = tens[i/10] + "-" + ones[i%10]
		}
	}
	return w
}()

func words(n int) string {
	if n > 0 && n < 100 {
		return numberWords[n]
	}
	return strconv.Itoa(n)
}

// NumberToSpeech renders a score the way a commentator reads it out:
// "five twenty-three" for 523,000. The hundreds are dropped unless entire
// is set or the number ends in 420 or 69, which are always read in full.
func NumberToSpeech(number int, entire bool) string {
	if number < 0 {
		return "minus " + NumberToSpeech(-number, entire)
	}
	if number%1000 == 420 || number%100 == 69 {
		entire = true
	}

	million := number / 1000000
	hundredThousand := number / 100000 % 10
	thousand := number / 1000 % 100
	heyNow := hundredThousand == 4 && thousand == 20

	var b strings.Builder
	say := func(s string) { b.WriteString(s); b.WriteByte(' ') }

	switch {
	case million >= 2:
		say(words(million))
		say("million")
	case million == 1:
		say("A million")
	}

	if hundredThousand > 0 {
		say(words(hundredThousand))
	}
	if thousand == 0 {
		if hundredThousand > 0 {
			say("hundred thousand")
		}
	} else {
		if hundredThousand > 0 && thousand < 10 {
			say("oh")
		}
		say(words(thousand))
		if (entire || hundredThousand == 0) && thousand != 69 && !heyNow {
			say("thousand")
		}
	}
	if heyNow {
		say("hey now")
	}

	if entire {
		hundred := number / 100 % 10
		unit := number % 100
		if hundred > 0 {
			say(words(hundred))
		}
		if unit == 0 {
			if hundred > 0 {
				say("hundred")
			}
		} else {
			if hundred > 0 && unit < 10 {
				say("oh")
			}
			say(words(unit))
		}
		if hundred == 4 && unit == 20 {
			say("hey now")
		}
	}
	return strings.TrimSpace(b.String())
}
