//go:build debug

package corelog

import "fmt"

var assertLogger = New("ASSERT")

// Assert panics with the formatted message if cond is false. Debug
// builds (tag "debug") treat a failed structural invariant as fatal;
// release builds log it instead, see assert_release.go.
func Assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(fmt.Sprintf("assertion failed: "+format, args...))
}
