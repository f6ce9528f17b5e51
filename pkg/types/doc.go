// Package types defines the record, snapshot, and configuration types shared
// by the Pantry store, its persistence backends, and its consumers, together
// with the sentinel errors every layer wraps.
//
// The store itself lives in internal/store; consumers depend only on the
// Reader interface declared here.
package types
