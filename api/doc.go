// Package api is the HTTP surface of the pipeline.
//
// POST /api/v1/analyze accepts a document set and streams the run as
// server-sent events; GET /api/v1/briefings and /api/v1/briefings/{id}
// serve persisted runs. Authentication and file parsing sit in front of
// this service, not in it.
package api
