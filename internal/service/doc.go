// Package service is the composition root of the collection bot: it owns
// the stores, the conversational engine and the dispatch scheduler, and
// exposes the administrative operations an outer HTTP layer calls.
package service
