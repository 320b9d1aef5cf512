package server

import (
	"net/http"

	"github.com/vango-dev/isorouter/pkg/router"
)

// Resolution is the JSON form of a delivered outcome.
type Resolution struct {
	Location router.Location `json:"location"`
	Data     any             `json:"data,omitempty"`
	Redirect string          `json:"redirect,omitempty"`
	Error    string          `json:"error,omitempty"`
	NotFound bool            `json:"notFound,omitempty"`
}

// NewResolution converts finish callback arguments into a Resolution.
func NewResolution(loc router.Location, data any, redirect string, err error) Resolution {
	res := Resolution{Location: loc}
	switch {
	case err != nil:
		res.Error = err.Error()
	case redirect != "":
		res.Redirect = redirect
	case data != nil:
		res.Data = data
	default:
		res.NotFound = true
	}
	return res
}

// Status returns the HTTP status for the resolution.
func (r Resolution) Status() int {
	switch {
	case r.Error != "":
		return http.StatusInternalServerError
	case r.Redirect != "":
		return http.StatusFound
	case r.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusOK
	}
}

// Outcome returns the outcome label of the resolution.
func (r Resolution) Outcome() string {
	switch {
	case r.Error != "":
		return router.KindError.String()
	case r.Redirect != "":
		return router.KindRedirect.String()
	case r.NotFound:
		return "not_found"
	default:
		return router.KindOk.String()
	}
}
