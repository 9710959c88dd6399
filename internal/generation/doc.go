// Package generation turns assembled prompts into validated schema objects.
//
// A Client sends the system prompt and the user prompt (with the schema's
// output contract appended) to a Backend, extracts the JSON payload, and
// validates it with the schema package. Backend failures are marked with
// services.ErrBackend and validation failures with services.ErrValidation;
// the *schema.ValidationError stays reachable through errors.As.
//
// When enabled, one corrective re-prompt feeds the validation errors back to
// the model before the call fails. Capabilities passed to Generate are
// offered to the backend as callable tools for that call only.
package generation
