// Package service contains the application use cases. Services coordinate
// the stores defined in internal/store, apply ownership rules, and record
// activity entries in the same transaction as the mutation they describe.
//
// Services depend on store interfaces only, never on a concrete database
// implementation. Expected failures are surfaced as sentinel errors
// (store.ErrTaskNotFound, ErrInvalidCredentials) or domain validation
// errors; everything else is wrapped in a ServiceError.
package service
