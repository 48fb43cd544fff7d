//go:build darwin

package window

// NewSystemEnumerator returns the enumerator for this platform.
func NewSystemEnumerator() Enumerator {
	return NewOSAScriptEnumerator()
}
