//go:build windows

package window

// NewSystemEnumerator returns the enumerator for this platform.
func NewSystemEnumerator() Enumerator {
	return NewWin32Enumerator()
}
