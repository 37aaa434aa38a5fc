// Package contend implements the contend/conclude test protocol: tests
// declare typed contentions against a per-test state, and the first absurd
// contention concludes the test and stops its execution.
//
// A suite registers test functions explicitly and hands the registry to a
// dispatcher:
//
//	reg := contend.NewRegistry()
//	reg.MustRegister("arithmetic", func(t *contend.T) {
//		t.Equality(4, 2+2)
//		t.Invert()
//		t.Equality(4, 5) // must not be equal
//	})
//
// Concluding a test (by a failing contention, or by Fail, Skip or Pass)
// terminates the test body via runtime.Goexit, so deferred cleanup still runs
// but no statement after the concluding call executes. Test bodies therefore
// always run on a goroutine owned by the dispatcher; see Execute.
package contend
