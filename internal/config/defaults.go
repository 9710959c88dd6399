package config

// Provider names.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
)

// Failure policies for episode expansion.
const (
	FailurePolicyAbort   = "abort"
	FailurePolicyIsolate = "isolate"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	defaultProvider       = ProviderOpenRouter
	defaultTitle          = "dramagen"
	defaultTimeoutSeconds = 120
	defaultRetryAttempts  = 3
	defaultMaxToolRounds  = 6
	defaultTemperature    = 0.8

	defaultGenre         = "general/urban"
	defaultAudience      = "general"
	defaultEpisodes      = 12
	defaultMinutes       = 5
	defaultExpand        = 3
	defaultPacing        = "fast"
	defaultConcurrency   = 1
	defaultFailurePolicy = FailurePolicyAbort
	defaultOutput        = "short_drama_script.md"
	defaultFormat        = FormatText

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

var providerBaseURLs = map[string]string{
	ProviderOpenRouter: "https://openrouter.ai/api/v1/chat/completions",
	ProviderOpenAI:     "https://api.openai.com/v1/chat/completions",
	ProviderGemini:     "",
}

var providerModels = map[string]string{
	ProviderOpenRouter: "openai/gpt-4o-mini",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderGemini:     "gemini-2.5-flash",
}

var providerKeyEnv = map[string]string{
	ProviderOpenRouter: "OPENROUTER_API_KEY",
	ProviderOpenAI:     "OPENAI_API_KEY",
	ProviderGemini:     "GEMINI_API_KEY",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		LLM: LLM{
			Provider:       defaultProvider,
			Title:          defaultTitle,
			TimeoutSeconds: defaultTimeoutSeconds,
			RetryAttempts:  defaultRetryAttempts,
			MaxToolRounds:  defaultMaxToolRounds,
			Temperature:    defaultTemperature,
		},
		Generation: Generation{
			CorrectiveReprompt: true,
			UseCapabilities:    true,
		},
		Pipeline: Pipeline{
			Genre:         defaultGenre,
			Audience:      defaultAudience,
			Episodes:      defaultEpisodes,
			Minutes:       defaultMinutes,
			Expand:        defaultExpand,
			Pacing:        defaultPacing,
			Concurrency:   defaultConcurrency,
			FailurePolicy: defaultFailurePolicy,
			Output:        defaultOutput,
			Format:        defaultFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// Providers lists the supported generation providers.
func Providers() []string {
	return []string{ProviderOpenRouter, ProviderOpenAI, ProviderGemini}
}

// APIKeyEnv returns the environment variable that supplies the API key for
// the configured provider.
func (c *Config) APIKeyEnv() string {
	return providerKeyEnv[c.LLM.Provider]
}
