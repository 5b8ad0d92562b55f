// Package errs defines the application's error types and utilities.
//
// Every error a handler returns is funnelled into an *HTTPError by the
// global error handler, so clients always receive a consistent shape:
// a JSON envelope for most failures, or a bare text body for request
// validation failures on the synonyms endpoint.
package errs
