// Package translation translates story sentences with a language model.
// Translations are kept in a TTL cache so that regenerating a story with
// repeated sentences does not ask the model twice, and can be persisted
// next to a run's images.
package translation
