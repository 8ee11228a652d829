// Package distribution computes how campaign leads are partitioned among
// sales users.
//
// Everything here is pure: functions take ordered leads and ordered user IDs
// and return a Plan describing which user receives which leads. Nothing is
// written anywhere; the campaign service applies plans inside a transaction.
//
// Three plan kinds exist:
//
//   - Split: the initial partition when a campaign is created from a lead
//     database. Every user but the last receives floor(N/K) leads; the last
//     user absorbs the remainder.
//   - Redistribute: a removed user's leads are handed to the remaining users
//     in contiguous chunks of ceil(N/K). Counts are additive.
//   - Transfer: every lead owned by one user moves to another.
package distribution
