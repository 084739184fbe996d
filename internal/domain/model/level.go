package model

import "fmt"

// Level labels the SSYK 2012 classification level of an aggregate row.
type Level string

const (
	SSYK1 Level = "SSYK1"
	SSYK2 Level = "SSYK2"
	SSYK3 Level = "SSYK3"
	SSYK4 Level = "SSYK4"
)

// Levels lists every level, coarsest first.
var Levels = []Level{SSYK1, SSYK2, SSYK3, SSYK4}

// MaxDigits is the length of the finest SSYK 2012 code.
const MaxDigits = 4

// Digits returns the code length of the level.
func (l Level) Digits() int {
	switch l {
	case SSYK1:
		return 1
	case SSYK2:
		return 2
	case SSYK3:
		return 3
	case SSYK4:
		return 4
	default:
		return 0
	}
}

// LevelOf returns the level whose codes have n digits.
func LevelOf(n int) (Level, error) {
	if n < 1 || n > MaxDigits {
		return "", fmt.Errorf("no SSYK level with %d digits", n)
	}
	return Levels[n-1], nil
}

// Truncate returns the level's code for a native code, or false when the code is too short.
func (l Level) Truncate(code string) (string, bool) {
	d := l.Digits()
	if d == 0 || len(code) < d {
		return "", false
	}
	return code[:d], true
}
