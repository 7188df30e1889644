// Package storage bootstraps the local SQLite database that backs the
// client's durable storage (session token, user, language).
//
// Open applies the embedded goose migrations before returning the handle.
// Repositories work against DBTX, so they can run either on the *sql.DB or
// inside a transaction started by WithTx.
package storage
