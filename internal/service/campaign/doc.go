// Package campaign implements the campaign orchestrator: creating campaigns,
// adding and removing sales users, and moving leads between them.
//
// Every mutating operation runs under a per-campaign lock and inside a single
// store transaction: compute a plan with the distribution package, apply all
// writes, verify the assignment ledger, commit. Any failure rolls the whole
// operation back. The service depends on the store contracts defined in this
// package and should never import from api/.
//
// Store implementations live in repository/postgres/ and repository/memory/.
package campaign
