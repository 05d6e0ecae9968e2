// Package models lists the models an OpenAI-compatible endpoint offers and
// groups them by the pipeline stage that can use them: story writing and
// translation, illustration, image verification and narration.
package models
