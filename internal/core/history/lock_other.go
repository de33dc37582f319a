//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package history

// lockFile is a no-op where flock is unavailable; a single writer is assumed.
func lockFile(string) (func(), error) {
	return func() {}, nil
}
