// Package audit keeps the bounded in-memory interaction log: every inbound
// message, outbound reply, escalation and media event, capped at 500 records
// and trimmed to the newest 250 when the cap is exceeded. An optional
// Archiver receives every record for durable storage.
package audit
