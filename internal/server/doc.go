// Package server exposes a route table over HTTP.
//
// Endpoints:
//
//	GET /resolve?url=/users/42?tab=posts   resolve one URL server-side
//	GET /ws                                 stream navigations over WebSocket
//	GET /routes                             list the table in priority order
//	GET /metrics                            Prometheus metrics
//	GET /healthz                            liveness
//
// Every /resolve request and every /ws connection dispatches on its own
// router built from the current Table, so one client never supersedes
// another. Within a /ws connection the latest navigation wins.
package server
