package server

import (
	"context"

	"github.com/crmarques/boxctl/resource"
)

// Call is a single authenticated BoxBilling API invocation.
type Call struct {
	Endpoint string
	Data     resource.Data
	Token    string
	// Referer overrides the executor's default Referer header when set.
	Referer string
	// IgnoreErrors turns every failure kind into Result.Ignored.
	IgnoreErrors bool
	// Debug logs ignored failures.
	Debug bool
}

type Executor interface {
	Execute(ctx context.Context, call Call) Result
}

// VersionReader is an optional executor capability used by access checks.
type VersionReader interface {
	Version(ctx context.Context) (string, error)
}

// Result is the outcome of one call: exactly one of Value/Err/Ignored is
// meaningful. Value may be nil on success when the API returned nothing.
type Result struct {
	Value   resource.Value
	Err     error
	Ignored error
}

func Ok(value resource.Value) Result {
	return Result{Value: value}
}

func Failed(err error) Result {
	return Result{Err: err}
}

// Settle applies the ignore-errors policy: with ignore set, a failure is moved
// to Ignored and the value reads as absent.
func Settle(value resource.Value, err error, ignore bool) Result {
	if err == nil {
		return Ok(value)
	}
	if ignore {
		return Result{Ignored: err}
	}
	return Failed(err)
}

func (r Result) OK() bool {
	return r.Err == nil
}

func (r Result) Unwrap() (resource.Value, error) {
	return r.Value, r.Err
}
