package transform

import "strings"

// Digits strips everything that is not an ASCII digit.
func Digits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Phone renders a 10-digit number as (AAA) BBB-CCCC.
func Phone(value string) string {
	d := Digits(value)
	if len(d) != 10 {
		return value
	}
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}

// SSN renders a 9-digit number as AAA-BB-CCCC.
func SSN(value string) string {
	d := Digits(value)
	if len(d) != 9 {
		return value
	}
	return d[:3] + "-" + d[3:5] + "-" + d[5:]
}
