// Package image generates story illustrations with text-to-image models.
//
// Supported providers:
//   - openai: DALL-E and gpt-image models through the images API
//   - gemini: Gemini image models through the genai SDK
//
// Generated images are cached on disk by prompt, so re-running a story with
// the same words and directive does not pay for the same image twice.
package image
