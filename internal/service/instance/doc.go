// Package instance keeps a single daemon writing the state store.
package instance
