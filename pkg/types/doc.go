// Package types defines the Store interface, the project record types,
// configuration, and the standard errors for the relmap project registry.
package types
