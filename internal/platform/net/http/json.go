package http

import (
	"net/http"

	"trawler/internal/platform/net/http/bind"
)

// GetJSON mounts a pure JSON handler for GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Handle(func(req *http.Request) Response {
		out, err := h(req)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	}))
}

// PostJSON mounts a JSON handler for POST; the body is decoded and validated
// into T before h runs. Successful posts answer 202 since they start work
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, Handle(func(req *http.Request) Response {
		in, err := bind.ParseJSON[T](req, bind.JSONOptions{MaxBytes: 1 << 16, DisallowUnknown: true, AllowEmptyBody: true})
		if err != nil {
			return Error(err)
		}
		out, err := h(req, in)
		if err != nil {
			return Error(err)
		}
		return Accepted(out)
	}))
}
