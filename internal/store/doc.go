// Package store groups persistence implementations for run history.
// Concrete backends live in subpackages; callers depend on the run.Recorder
// interface rather than anything here.
package store
