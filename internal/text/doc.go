// Package text provides language model providers used to write story
// segments and translate sentences.
//
// Supported providers:
//   - openai: chat completions, any OpenAI-compatible endpoint via BaseURL
//   - gemini: Google Gemini through the genai SDK
package text
