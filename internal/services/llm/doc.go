// Package llm provides an OpenAI-compatible chat completion client used as a
// generation backend.
//
// # Requests
//
// A Request carries a system prompt, a user prompt, and optional Tools. The
// client asks for JSON output (response_format json_object). When tools are
// attached the model may call them; the client executes matching calls,
// appends the results to the conversation, and resends, up to
// Config.MaxToolRounds rounds. The final request after the limit is sent
// without tools so the model must answer.
//
// # Configuration
//
// Requires api_key and model; base_url defaults to the OpenRouter chat
// completions endpoint. Referer and title are forwarded as OpenRouter
// attribution headers when set.
//
// # Retry Behaviour
//
// Each exchange retries on HTTP 408/429/5xx, network timeouts, and empty
// content with exponential backoff (base 1s, max 10s, up to 3 attempts by
// default). Retry-After is honoured. Context cancellation aborts retries
// immediately.
//
// # Decoding
//
// ExtractJSON strips code fences and prose around the JSON payload before
// the generation client validates it.
package llm
