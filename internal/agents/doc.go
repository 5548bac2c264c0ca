// Package agents tracks the human collectors and the round-robin cursor
// used to assign escalated conversations to them.
package agents
