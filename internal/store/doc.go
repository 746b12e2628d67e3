// Package store provides abstractions and implementations for data
// persistence. It defines the store interfaces consumed by the service layer
// together with the shared error vocabulary and transaction helper.
package store
