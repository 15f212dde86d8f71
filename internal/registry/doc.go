// Package registry owns the mapping of settings keys to their definitions and
// keeps the backing content records in sync with it.
//
// All definitions live together in one named configuration aggregate that is
// read and written through a ConfigStore. Every write is followed by a
// reconciliation pass which makes sure each registered key has at least one
// record of its bundle in the RecordStore. Reconciliation is additive only:
// removing a key from the registry never removes its records.
//
// Reconciliation performs a query followed by a create without any locking, so
// two concurrent registrations of the same new key may both create a record.
// Callers that need strict single-record semantics must enforce it in storage.
package registry
