// Package api is the client for the remote document service. It creates a
// remote resource from a document's raw content, discovers the resource's
// operation endpoints from the creation response, invokes named operations
// (classify, extract, redact), and deletes the resource when processing is
// finished.
//
// Every call goes through the transport dispatch chain, so auth, timeout
// classification, retry, and error mapping apply uniformly.
package api
