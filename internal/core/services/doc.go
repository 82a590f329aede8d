// Package services implements the driving port interfaces.
// Services contain the indexing, search and settings logic and
// orchestrate calls to driven ports (adapters).
//
// Collaborators are injected through constructors; no service reads
// global configuration.
package services
