// Package curve implements the reserve math of the launchpad bonding curve.
//
// Every function in this package is pure: it takes reserves and configuration,
// returns the outcome of a trade, a launch or a migration, and never mutates
// its inputs. All amounts are 256-bit unsigned integers and every division is
// integer division with an explicit rounding direction:
//
//   - amounts owed by the user or the pool round up (ceil), so the protocol
//     never under-collects;
//   - amounts paid out round down (floor).
//
// Key functions:
//
//   - NetFromGross / GrossFromNetCeil: trade fee conversion.
//   - FullFill: tokens received for a given net ETH input.
//   - ExactAmountNeeded: ETH required to buy the remaining real inventory.
//   - SellOutcome: ETH returned for a token amount.
//   - DeriveLaunchReserves: virtual reserves for a new launch.
//   - SizeMigration: token/ETH bucket deposited into the AMM pool.
//
// Fixed-point ratios use Wad (1.0 == 1e18); fee rates use parts of
// Config.FeeDenominator.
package curve
