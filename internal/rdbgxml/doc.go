// Package rdbgxml implements the RDBG wire codec: building request bodies
// in the server's three coexisting XML namespace dialects and decoding
// response bodies, including the base64-wrapped "data" envelope used by
// the ping endpoint.
package rdbgxml
