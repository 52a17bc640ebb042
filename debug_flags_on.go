//go:build debug

package main

// Debug builds force debug logging on regardless of config.
func debugEnabled() bool {
	return true
}
