//go:build !debug

package main

// debugEnabled reports whether the binary was built with -tags debug.
func debugEnabled() bool {
	return false
}
