// internal/launchpad/errors.go
package launchpad

import "errors"

var (
	ErrNotInitialized     = errors.New("launchpad not initialized")
	ErrAlreadyInitialized = errors.New("launchpad already initialized")
	ErrCurveCompleted     = errors.New("curve completed")
	ErrNotCompleted       = errors.New("curve not completed")
	ErrAlreadyMigrated    = errors.New("liquidity already migrated")
	ErrReentrantCall      = errors.New("reentrant call")
	ErrUnknownToken       = errors.New("token not deployed")
)
