// Package anthropic provides the generation implementation for the Anthropic
// messages API.
//
// This package implements ai.Generator using the langchaingo library. Each
// call sends one system prompt and one user message and returns the text of
// the first response choice. Structured-output handling (fence stripping,
// JSON decoding, corrective retry) lives in ai.GenerateStructured and works
// over this generator unchanged.
package anthropic
