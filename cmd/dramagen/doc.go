// Command dramagen generates short-drama script packages.
//
// Typical usage:
//
//	dramagen generate --theme "A mocked courier becomes the boss in three days"
//	dramagen heuristics tropes urban
//	dramagen config init
//
// Configuration is read from --config, ~/.config/dramagen/config.toml, or
// ./dramagen.toml. API keys come from the config file or the provider's
// environment variable (OPENROUTER_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY),
// optionally loaded from a .env file.
package main
