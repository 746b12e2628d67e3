// Package events provides a synchronous in-process event mechanism used to
// decouple cross-entity side effects. The dispatch service emits a journal
// upsert event after committing a summary change; the notes side consumes it
// without either subsystem importing the other.
package events
