// Package models provides the core data structures for handling webhook requests and responses.
package models

// Request represents an incoming webhook request: the raw body and its headers, keyed by lower-cased name.
type Request struct {
	Body    []byte
	Headers map[string]string
}

// Response defines the structure for an HTTP response containing a body, headers, and a status code.
type Response struct {
	Body       string
	Headers    map[string]string
	StatusCode int
}
