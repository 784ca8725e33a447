// Package server provides the HTTP command surface for TrustWatch:
// the embedded dashboard, the REST API for sync status, watchlist
// reads, URL checks, and source management, and a Server-Sent Events
// stream of sync status transitions.
package server
