// Package errors provides coded, structured errors for weave.
//
// Every error the reconciler raises synchronously carries a code that maps to
// a registered template: a short message, a longer explanation and a
// category. Structural errors (unknown node type, mounting a node under
// itself, context writes with no container) are fatal to the operation that
// raised them and are returned to the caller. Render errors never surface as
// return values; they are logged and re-emitted as lifecycle events.
//
// # Error Codes
//
//	W001  unknown node type
//	W002  node mounted under itself
//	W003  context write without container
//	W004  node has no host
//	W005  node used after unmount
//	W020  render failed
//	W040  invalid configuration
//	W060  devtools transport failure
//	W080  invalid declared tree document
//
// # Usage
//
//	err := errors.New(errors.CodeNoContainer).
//	    WithDetailf("key %v", key)
//
//	fmt.Println(err.Format())
package errors
