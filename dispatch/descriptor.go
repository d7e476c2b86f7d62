package dispatch

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// Kind tags which variant a Descriptor holds.
type Kind uint8

const (
	// KindAddress is a bare request address.
	KindAddress Kind = iota + 1
	// KindStructured is an address plus caller-supplied Options.
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindAddress:
		return "address"
	case KindStructured:
		return "structured"
	default:
		return "invalid"
	}
}

// Options are the caller's transport options for a structured descriptor.
// Options carries no context; the dispatcher binds its own signal.
type Options struct {
	Method string
	Header http.Header
	Body   []byte
}

// Descriptor specifies one request. Build it with URL or Request; the zero
// value is invalid and settles as a rejected envelope.
type Descriptor struct {
	kind    Kind
	address string
	options Options
}

// URL returns a descriptor for a default GET request to address.
func URL(address string) Descriptor {
	return Descriptor{kind: KindAddress, address: address}
}

// Request returns a structured descriptor. opts is copied, so later changes
// to the caller's header map or body slice do not affect the descriptor.
func Request(address string, opts Options) Descriptor {
	return Descriptor{
		kind:    KindStructured,
		address: address,
		options: Options{
			Method: opts.Method,
			Header: opts.Header.Clone(),
			Body:   bytes.Clone(opts.Body),
		},
	}
}

// Kind reports the descriptor variant.
func (d Descriptor) Kind() Kind { return d.kind }

// Address returns the request target.
func (d Descriptor) Address() string { return d.address }

// Options returns a copy of the structured options. Address descriptors
// return the zero Options.
func (d Descriptor) Options() Options {
	return Options{
		Method: d.options.Method,
		Header: d.options.Header.Clone(),
		Body:   bytes.Clone(d.options.Body),
	}
}

// Method returns the HTTP method the descriptor normalizes to.
func (d Descriptor) Method() string {
	if d.kind == KindStructured && d.options.Method != "" {
		return d.options.Method
	}
	return http.MethodGet
}

func (d Descriptor) String() string {
	return d.Method() + " " + d.address
}

// build normalizes the descriptor into a transport-ready request bound to ctx.
// ctx already carries the cancellation signal; nothing in Options can replace it.
func (d Descriptor) build(ctx context.Context, userAgent string) (*http.Request, error) {
	switch d.kind {
	case KindAddress:
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.address, nil)
		if err != nil {
			return nil, err
		}
		if userAgent != "" {
			req.Header.Set("User-Agent", userAgent)
		}
		return req, nil

	case KindStructured:
		var body io.Reader
		if len(d.options.Body) > 0 {
			body = bytes.NewReader(d.options.Body)
		}
		req, err := http.NewRequestWithContext(ctx, d.Method(), d.address, body)
		if err != nil {
			return nil, err
		}
		for k, v := range d.options.Header {
			for _, vv := range v {
				req.Header.Add(k, vv)
			}
		}
		if userAgent != "" && req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", userAgent)
		}
		return req, nil

	default:
		return nil, ErrInvalidDescriptor
	}
}
