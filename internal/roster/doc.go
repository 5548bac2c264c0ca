// Package roster holds the debtor contact directory: normalized-phone keyed
// contact records with balances and days overdue, plus the JSON snapshot
// persistence that survives restarts.
package roster
