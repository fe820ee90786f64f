//go:build !debug

package corelog

var assertLogger = New("ASSERT")

// Assert logs a failed structural invariant instead of panicking; debug
// builds (tag "debug") panic instead, see assert_debug.go.
func Assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	assertLogger.Errorf(format, args...)
}
