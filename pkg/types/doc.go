// Package types defines the kind enumerations and position types shared
// between the storage layer and its consumers.
//
// The storage layer persists kind fields as opaque integers; the meaning of
// those integers lives here, next to the collectors and viewers that agree
// on them.
package types
