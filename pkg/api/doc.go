// Package api defines the request and response messages of the splitledger.v1 RPC services.
//
// Messages are plain Go structs encoded as JSON. Money values are decimal.Decimal and
// serialize as quoted decimal strings (e.g. "12.50") so no precision is lost on the wire.
// Timestamps are Unix seconds.
package api
