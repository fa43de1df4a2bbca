// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package matcherv3 provides typed views over minipb messages for the HTTP
// input types in envoy.type.matcher.v3.
//
// Each view wraps a *[minipb.Message] and names its fields. The message
// tables are compiled from the go-control-plane descriptors on first use.
package matcherv3

import (
	"sync"

	pb "github.com/envoyproxy/go-control-plane/envoy/type/matcher/v3"
	"google.golang.org/protobuf/proto"

	"buf.build/go/minipb"
)

var (
	requestHeaderType   = compile[*pb.HttpRequestHeaderMatchInput]()
	requestTrailerType  = compile[*pb.HttpRequestTrailerMatchInput]()
	responseHeaderType  = compile[*pb.HttpResponseHeaderMatchInput]()
	responseTrailerType = compile[*pb.HttpResponseTrailerMatchInput]()
	queryParamType      = compile[*pb.HttpRequestQueryParamMatchInput]()
)

func compile[M proto.Message]() func() *minipb.MessageType {
	return sync.OnceValue(func() *minipb.MessageType {
		return minipb.CompileForMessage[M]()
	})
}

// view is the state common to every view type.
type view struct{ msg *minipb.Message }

// Message returns the underlying message.
func (v view) Message() *minipb.Message { return v.msg }

// Serialize encodes this message on its arena. See [minipb.Message.Marshal].
func (v view) Serialize(options ...minipb.MarshalOption) ([]byte, error) {
	return v.msg.Marshal(options...)
}

// newView allocates a message of the given type, returning false when the
// arena's limit is reached.
func newView(ty *minipb.MessageType, shared *minipb.Shared) (view, bool) {
	m := shared.NewMessage(ty)
	return view{m}, m != nil
}

func parseView(ty *minipb.MessageType, data []byte, shared *minipb.Shared, options []minipb.UnmarshalOption) (view, error) {
	m, err := minipb.Unmarshal(data, ty, shared, options...)
	return view{m}, err
}

// headerInput is a view of a message whose only field is header_name.
type headerInput struct{ view }

// HeaderName returns the header_name field.
func (v headerInput) HeaderName() string { return minipb.Get[string](v.msg, 1) }

// SetHeaderName sets the header_name field. The string is not copied.
func (v headerInput) SetHeaderName(name string) { minipb.Set(v.msg, 1, name) }

// ClearHeaderName resets the header_name field to empty.
func (v headerInput) ClearHeaderName() { v.msg.ClearField(1) }

// HttpRequestHeaderMatchInput selects a request header by name.
type HttpRequestHeaderMatchInput struct{ headerInput }

// NewHttpRequestHeaderMatchInput allocates an empty message on shared.
//
// Returns nil if shared's limit would be exceeded.
func NewHttpRequestHeaderMatchInput(shared *minipb.Shared) *HttpRequestHeaderMatchInput {
	v, ok := newView(requestHeaderType(), shared)
	if !ok {
		return nil
	}
	return &HttpRequestHeaderMatchInput{headerInput{v}}
}

// ParseHttpRequestHeaderMatchInput decodes data into a new message on shared.
func ParseHttpRequestHeaderMatchInput(data []byte, shared *minipb.Shared, options ...minipb.UnmarshalOption) (*HttpRequestHeaderMatchInput, error) {
	v, err := parseView(requestHeaderType(), data, shared, options)
	if err != nil {
		return nil, err
	}
	return &HttpRequestHeaderMatchInput{headerInput{v}}, nil
}

// HttpRequestTrailerMatchInput selects a request trailer by name.
type HttpRequestTrailerMatchInput struct{ headerInput }

// NewHttpRequestTrailerMatchInput allocates an empty message on shared.
//
// Returns nil if shared's limit would be exceeded.
func NewHttpRequestTrailerMatchInput(shared *minipb.Shared) *HttpRequestTrailerMatchInput {
	v, ok := newView(requestTrailerType(), shared)
	if !ok {
		return nil
	}
	return &HttpRequestTrailerMatchInput{headerInput{v}}
}

// ParseHttpRequestTrailerMatchInput decodes data into a new message on shared.
func ParseHttpRequestTrailerMatchInput(data []byte, shared *minipb.Shared, options ...minipb.UnmarshalOption) (*HttpRequestTrailerMatchInput, error) {
	v, err := parseView(requestTrailerType(), data, shared, options)
	if err != nil {
		return nil, err
	}
	return &HttpRequestTrailerMatchInput{headerInput{v}}, nil
}

// HttpResponseHeaderMatchInput selects a response header by name.
type HttpResponseHeaderMatchInput struct{ headerInput }

// NewHttpResponseHeaderMatchInput allocates an empty message on shared.
//
// Returns nil if shared's limit would be exceeded.
func NewHttpResponseHeaderMatchInput(shared *minipb.Shared) *HttpResponseHeaderMatchInput {
	v, ok := newView(responseHeaderType(), shared)
	if !ok {
		return nil
	}
	return &HttpResponseHeaderMatchInput{headerInput{v}}
}

// ParseHttpResponseHeaderMatchInput decodes data into a new message on shared.
func ParseHttpResponseHeaderMatchInput(data []byte, shared *minipb.Shared, options ...minipb.UnmarshalOption) (*HttpResponseHeaderMatchInput, error) {
	v, err := parseView(responseHeaderType(), data, shared, options)
	if err != nil {
		return nil, err
	}
	return &HttpResponseHeaderMatchInput{headerInput{v}}, nil
}

// HttpResponseTrailerMatchInput selects a response trailer by name.
type HttpResponseTrailerMatchInput struct{ headerInput }

// NewHttpResponseTrailerMatchInput allocates an empty message on shared.
//
// Returns nil if shared's limit would be exceeded.
func NewHttpResponseTrailerMatchInput(shared *minipb.Shared) *HttpResponseTrailerMatchInput {
	v, ok := newView(responseTrailerType(), shared)
	if !ok {
		return nil
	}
	return &HttpResponseTrailerMatchInput{headerInput{v}}
}

// ParseHttpResponseTrailerMatchInput decodes data into a new message on shared.
func ParseHttpResponseTrailerMatchInput(data []byte, shared *minipb.Shared, options ...minipb.UnmarshalOption) (*HttpResponseTrailerMatchInput, error) {
	v, err := parseView(responseTrailerType(), data, shared, options)
	if err != nil {
		return nil, err
	}
	return &HttpResponseTrailerMatchInput{headerInput{v}}, nil
}

// HttpRequestQueryParamMatchInput selects a query parameter by name.
type HttpRequestQueryParamMatchInput struct{ view }

// NewHttpRequestQueryParamMatchInput allocates an empty message on shared.
//
// Returns nil if shared's limit would be exceeded.
func NewHttpRequestQueryParamMatchInput(shared *minipb.Shared) *HttpRequestQueryParamMatchInput {
	v, ok := newView(queryParamType(), shared)
	if !ok {
		return nil
	}
	return &HttpRequestQueryParamMatchInput{v}
}

// ParseHttpRequestQueryParamMatchInput decodes data into a new message on
// shared.
func ParseHttpRequestQueryParamMatchInput(data []byte, shared *minipb.Shared, options ...minipb.UnmarshalOption) (*HttpRequestQueryParamMatchInput, error) {
	v, err := parseView(queryParamType(), data, shared, options)
	if err != nil {
		return nil, err
	}
	return &HttpRequestQueryParamMatchInput{v}, nil
}

// QueryParam returns the query_param field.
func (v *HttpRequestQueryParamMatchInput) QueryParam() string {
	return minipb.Get[string](v.msg, 1)
}

// SetQueryParam sets the query_param field. The string is not copied.
func (v *HttpRequestQueryParamMatchInput) SetQueryParam(name string) {
	minipb.Set(v.msg, 1, name)
}

// ClearQueryParam resets the query_param field to empty.
func (v *HttpRequestQueryParamMatchInput) ClearQueryParam() { v.msg.ClearField(1) }
