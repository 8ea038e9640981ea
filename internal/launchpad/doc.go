// Package launchpad is the bonding-curve factory: it launches fixed-supply
// tokens, trades them along a constant-product curve backed by virtual
// reserves, and migrates the reserved token/ETH bucket into an AMM pool once
// the curve inventory is sold out.
//
// Every mutating operation runs as one transaction. Changes made to the
// ledger, fee vault, tokens, balances and AMM are recorded in a
// blockchain.Journal and undone together when the operation fails.
package launchpad
