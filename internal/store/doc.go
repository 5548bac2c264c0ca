// Package store provides the SQLite-backed interaction archive. The bounded
// in-memory log in package audit serves the live admin surface; the archive
// keeps the full history beyond the ring cap and across restarts, for
// exports and compliance review.
package store
