// Package httpapi exposes the search engine, category tree and fatwa
// administration as a JSON HTTP API.
//
// Routes live under /api/v1. Every response carries an X-Request-ID header;
// errors are returned as {"error": "..."} with 400 for invalid input, 404
// for unknown ids and 409 for conflicts.
package httpapi
