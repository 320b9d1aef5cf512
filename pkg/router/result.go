package router

import (
	"errors"
	"fmt"
)

// Kind identifies the branch of a Result.
type Kind uint8

const (
	// KindOk carries data for the finish callback.
	KindOk Kind = iota

	// KindRedirect carries a target URL.
	KindRedirect

	// KindError carries an error.
	KindError
)

// String returns the kind as used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindOk:
		return "ok"
	case KindRedirect:
		return "redirect"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ErrUnspecified stands in for a nil error passed to Fail.
var ErrUnspecified = errors.New("router: handler failed without an error")

// ErrEmptyRedirect is delivered in place of a redirect to "".
var ErrEmptyRedirect = errors.New("router: redirect to empty URL")

// Result is the outcome a handler reports through Done.
type Result struct {
	Kind     Kind
	Data     any
	Redirect string
	Err      error
}

// Ok reports success. A nil data becomes an empty map.
func Ok(data any) Result {
	if data == nil {
		data = map[string]any{}
	}
	return Result{Kind: KindOk, Data: data}
}

// Redirect reports that the route resolved to another URL. An empty url is
// delivered as ErrEmptyRedirect.
func Redirect(url string) Result {
	return Result{Kind: KindRedirect, Redirect: url}
}

// Fail reports an error. A nil err becomes ErrUnspecified.
func Fail(err error) Result {
	if err == nil {
		err = ErrUnspecified
	}
	return Result{Kind: KindError, Err: err}
}

// normalize fills the defaults Ok and Fail apply, so that a hand-built
// Result can never look like a not-found delivery.
func (r Result) normalize() Result {
	switch r.Kind {
	case KindError:
		return Fail(r.Err)
	case KindRedirect:
		if r.Redirect == "" {
			return Fail(ErrEmptyRedirect)
		}
		return r
	default:
		return Ok(r.Data)
	}
}

// PayloadError wraps a non-error value found under the "error" key of a
// payload.
type PayloadError struct {
	Value any
}

func (e *PayloadError) Error() string {
	return fmt.Sprint(e.Value)
}

// FromPayload converts a loosely-typed payload into a Result. An "error"
// entry takes precedence over a "redirect" entry, which takes precedence
// over treating the whole payload as data. Empty strings and nil values
// count as absent.
func FromPayload(payload map[string]any) Result {
	if v, ok := present(payload, "error"); ok {
		if err, isErr := v.(error); isErr {
			return Fail(err)
		}
		return Fail(&PayloadError{Value: v})
	}
	if v, ok := present(payload, "redirect"); ok {
		if s, isStr := v.(string); isStr {
			return Redirect(s)
		}
		return Redirect(fmt.Sprint(v))
	}
	if payload == nil {
		return Ok(nil)
	}
	return Ok(payload)
}

func present(payload map[string]any, key string) (any, bool) {
	v, ok := payload[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return nil, false
	}
	return v, true
}

// Done is the completion callback handed to a handler. Only the first
// call has any effect, and only while the dispatch is still the latest.
type Done func(Result)

// Ok reports success with data.
func (d Done) Ok(data any) {
	d(Ok(data))
}

// Redirect reports a redirect to url.
func (d Done) Redirect(url string) {
	d(Redirect(url))
}

// Error reports err.
func (d Done) Error(err error) {
	d(Fail(err))
}

// Payload reports a loosely-typed payload; see FromPayload.
func (d Done) Payload(payload map[string]any) {
	d(FromPayload(payload))
}
