package upstream

import "fmt"

// Result is the outcome of a single upstream call. It is either a Response
// (the upstream answered, with any status) or a TransportFailure.
type Result interface {
	isResult()
}

// Response is an upstream answer, relayed to the caller as is
type Response struct {
	StatusCode int
	Body       []byte
}

func (Response) isResult() {}

// OK reports whether the upstream answered with a 2xx status
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// TransportFailure means the call never produced a usable response
type TransportFailure struct {
	Err error
}

func (TransportFailure) isResult() {}

func (f TransportFailure) Error() string {
	return fmt.Sprintf("upstream transport failure: %v", f.Err)
}

func (f TransportFailure) Unwrap() error {
	return f.Err
}
