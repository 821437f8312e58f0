// Package heritage provides the content service behind the cultural-heritage
// website: hero slides, cultural categories, regional highlights, featured
// stories and newsletter subscribers.
//
// Records live in a document store (see the store subpackage) and are
// addressed by their own string "id" field rather than the backend's row
// key. Each entity has a record type carrying server-assigned fields and an
// input type carrying only client-settable fields. Inputs are validated
// before any store access, and updates replace every client-settable field
// (an omitted optional field resets to its default).
//
// Newsletter subscribers are keyed by lowercased email. Unsubscribing marks
// the subscriber inactive instead of deleting it, and subscribing again
// reactivates the existing record.
package heritage
