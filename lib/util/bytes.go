package util

import "unsafe"

// BytesToString aliases b without copying; b must not change while the string is in use.
func BytesToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
