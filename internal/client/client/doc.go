// Package client is the HTTP API client of the todo backend.
//
// # Overview
//
// Client is the transport-agnostic contract used by the state stores.
// HTTPClient implements it over net/http and the JSON envelope convention
// ({success, data, error}) of the backend.
//
// Every request goes through the same pipeline:
//
//  1. the bearer token is read from Credentials at send time and attached as
//     "Authorization: Bearer <token>" when present;
//  2. a response without HTTP status (connection refused, reset, timeout) is
//     replayed once with the "X-Retry-Count: 1" marker; a second failure is
//     returned wrapped in ErrUnavailable;
//  3. a 401 revokes the stored credentials for the token that was sent and,
//     if this call was the one that revoked them, invokes the unauthorized
//     handler (the redirect to the login view). The call still fails with an
//     error matching ErrUnauthorized.
//
// Only idempotent methods are replayed unless WithRetryUnsafe(true) is given:
// replaying a POST /todos that did reach the server creates a duplicate.
//
// # Errors
//
// Application failures ("success": false or a non-2xx status) are returned as
// *APIError. Match the categories with errors.Is: ErrUnauthorized,
// ErrUnavailable.
package client
