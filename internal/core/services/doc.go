// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The algorithmic core lives here: the segment graph model, the bounded
// closed-walk enumerator, the usage penalty model and the diversity-aware
// session selector.
//
// Services are pure Go with no CGO or external dependencies.
package services
