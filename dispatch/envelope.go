package dispatch

import (
	"encoding/json"
	"strconv"
)

// State is the terminal state of one request.
type State uint8

const (
	Fulfilled State = iota + 1
	Rejected
)

func (s State) String() string {
	switch s {
	case Fulfilled:
		return OutcomeFulfilled
	case Rejected:
		return OutcomeRejected
	default:
		return "pending"
	}
}

// Outcome labels used in envelopes and their JSON form.
const (
	OutcomeFulfilled = "fulfilled"
	OutcomeRejected  = "rejected"
)

// Envelope is the uniform result of one descriptor. It is produced exactly
// once and never mutated by the dispatcher afterwards.
type Envelope[T any] struct {
	State      State
	StatusCode int
	Payload    T
	Reason     string
}

func fulfilled[T any](status int, payload T) Envelope[T] {
	return Envelope[T]{State: Fulfilled, StatusCode: status, Payload: payload}
}

func rejected[T any](reason string) Envelope[T] {
	return Envelope[T]{State: Rejected, Reason: reason}
}

// OK reports whether the transport call succeeded and the body decoded.
// A fulfilled envelope may still carry a 4xx/5xx status code.
func (e Envelope[T]) OK() bool {
	return e.State == Fulfilled
}

// Outcome returns "rejected", the decimal status code, or "fulfilled" when
// the transport reported no status.
func (e Envelope[T]) Outcome() string {
	switch {
	case e.State == Rejected:
		return OutcomeRejected
	case e.StatusCode != 0:
		return strconv.Itoa(e.StatusCode)
	default:
		return OutcomeFulfilled
	}
}

type envelopeJSON[T any] struct {
	Status any    `json:"status"`
	Reason string `json:"reason,omitempty"`
	Data   *T     `json:"data,omitempty"`
}

// MarshalJSON emits {"status":200,"data":...} for fulfilled envelopes and
// {"status":"rejected","reason":"..."} for rejected ones.
func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	out := envelopeJSON[T]{}
	switch {
	case e.State == Rejected:
		out.Status = OutcomeRejected
		out.Reason = e.Reason
		return json.Marshal(out)
	case e.StatusCode != 0:
		out.Status = e.StatusCode
	default:
		out.Status = OutcomeFulfilled
	}
	payload := e.Payload
	out.Data = &payload
	return json.Marshal(out)
}
