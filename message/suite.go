package message

import "github.com/psychi/fragments-sub003/internal/rtti"

// Suite bundles everything a packet needs to describe one RPC message:
// its address (Tag), its method/sequence (Call), its routing header
// (Invoice), and an optionally-attached, type-erased parameter. Rather
// than the source's offset-addressed payload tacked on after the suite
// header (so a dynamic_cast-free lookup could find it by pointer
// arithmetic), this port carries the parameter as an `any` alongside an
// rtti.Token identifying its static type — Go already gives type-erased
// storage and a safe way to query it back out, so there is no layout to
// reconstruct.
type Suite struct {
	Tag     Tag
	Call    Call
	Invoice Invoice

	paramToken rtti.Token
	param      any
}

// NewSuite builds a parameterless Suite.
func NewSuite(tag Tag, call Call, invoice Invoice) Suite {
	return Suite{Tag: tag, Call: call, Invoice: invoice}
}

// NewParametricSuite builds a Suite carrying param, addressable later by
// its static type via Parameter.
func NewParametricSuite[T any](tag Tag, call Call, invoice Invoice, param T) Suite {
	return Suite{Tag: tag, Call: call, Invoice: invoice, paramToken: rtti.TokenOf[T](), param: param}
}

// ParameterToken returns the RTTI token of the attached parameter's
// static type, or the zero Token if the suite carries none.
func (s Suite) ParameterToken() rtti.Token {
	return s.paramToken
}

// Parameter retrieves the suite's parameter as T. The second result is
// false if the suite carries no parameter, or carries one of a different
// type — the Go equivalent of the source's RTTI-gated cast returning
// nullptr on mismatch.
func Parameter[T any](s Suite) (T, bool) {
	var zero T
	if s.paramToken.IsZero() || s.paramToken != rtti.TokenOf[T]() {
		return zero, false
	}
	v, ok := s.param.(T)
	return v, ok
}
