// Package api defines the SplitLah RPC surface: message types, procedure
// names, and Connect handler and client constructors for each service.
//
// Messages are plain Go structs carried over a JSON codec, so any Connect
// client (or curl) speaking application/json can call the server:
//
//	curl -H 'Content-Type: application/json' \
//	  -d '{"username":"alice","password":"pw"}' \
//	  http://localhost:8080/splitlah.v1.AuthService/Login
package api

import (
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
)

// Codec is the JSON codec used by every handler and client in this package.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (Codec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }

func handlerOptions(opts []connect.HandlerOption) connect.HandlerOption {
	return connect.WithHandlerOptions(append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)...)
}

func clientOptions(opts []connect.ClientOption) connect.ClientOption {
	return connect.WithClientOptions(append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)...)
}

// mount routes each procedure of a service to its handler.
func mount(service string, handlers map[string]http.Handler) (string, http.Handler) {
	return "/" + service + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// unimplemented is returned by clients for nil services and by embedded
// Unimplemented*Handler types.
func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errUnimplemented(procedure))
}

type errUnimplemented string

func (e errUnimplemented) Error() string { return string(e) + " is not implemented" }
