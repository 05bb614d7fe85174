package assert

import "github.com/oomph-ac/simregion/oerror"

// IsTrue panics with an *oerror.SimError if ok is false.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}
