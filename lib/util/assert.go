package util

import "fmt"

// Assert panics when an internal invariant does not hold.
func Assert(test bool, format string, args ...any) {
	if !test {
		panic(fmt.Sprintf("assertion failure: "+format, args...))
	}
}
