package dap

import "github.com/google/go-dap"

// EvaluateCollectionArguments pages the children of a dictionary or
// value-table evaluation result beyond what a single evaluate/variables
// round trip carries: evaluate hands back a variablesReference the
// same way it would for any expandable result, and this request pages
// through the rows the container fallback already resolved.
type EvaluateCollectionArguments struct {
	VariablesReference int `json:"variablesReference"`
	Start              int `json:"start"`
	Count              int `json:"count"`
}

// EvaluateCollectionRequest is not part of the DAP specification:
// go-dap's decoder only recognizes the commands the spec defines, so
// this type is read from the wire by dap/conn.go peeking the raw
// "command" field before handing off to go-dap's own decoder.
type EvaluateCollectionRequest struct {
	dap.Request
	Arguments EvaluateCollectionArguments `json:"arguments"`
}

func (r *EvaluateCollectionRequest) GetRequest() *dap.Request {
	return &r.Request
}

// EvaluateCollectionResponseBody mirrors dap.VariablesResponseBody's
// shape (a flat Variables list) plus the total row count, so a client
// can page without a second round trip to learn how many rows exist.
type EvaluateCollectionResponseBody struct {
	Items []dap.Variable `json:"items"`
	Total int            `json:"total"`
}

type EvaluateCollectionResponse struct {
	dap.Response
	Body EvaluateCollectionResponseBody `json:"body"`
}

func (r *EvaluateCollectionResponse) GetResponse() *dap.Response {
	return &r.Response
}

// evaluateCollectionCommand is the wire "command" value dap/conn.go
// watches for.
const evaluateCollectionCommand = "evaluateCollection"
