package llm

import "strings"

// ErrorType classifies provider failures so callers can decide between
// retrying, failing fast, and disabling the provider for the session.
type ErrorType string

const (
	// ErrorQuota means the account is out of credit; the provider stays
	// unusable until reconfiguration, so retries are pointless.
	ErrorQuota ErrorType = "quota"
	// ErrorAuth means the credential is missing or rejected.
	ErrorAuth ErrorType = "auth"
	// ErrorRate means the provider throttled this request.
	ErrorRate ErrorType = "rate"
	// ErrorTransient covers timeouts and temporary outages worth retrying.
	ErrorTransient ErrorType = "transient"
	// ErrorPermanent covers everything else.
	ErrorPermanent ErrorType = "permanent"
)

// ClassifyError maps a provider error onto an ErrorType by inspecting its
// message. Providers return plain errors, so string matching is the only
// classification available across all of them.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "quota"), strings.Contains(e, "credit"), strings.Contains(e, "insufficient_quota"), strings.Contains(e, "billing"):
		return ErrorQuota
	case strings.Contains(e, "api key"), strings.Contains(e, "apikey"), strings.Contains(e, "unauthorized"), strings.Contains(e, "401"), strings.Contains(e, "403"), strings.Contains(e, "authentication"):
		return ErrorAuth
	case strings.Contains(e, "rate limit"), strings.Contains(e, "429"):
		return ErrorRate
	case strings.Contains(e, "timeout"), strings.Contains(e, "deadline"), strings.Contains(e, "temporarily"), strings.Contains(e, "unavailable"), strings.Contains(e, "connection refused"):
		return ErrorTransient
	default:
		return ErrorPermanent
	}
}

// Retryable reports whether a failure of this type may succeed on retry.
func (t ErrorType) Retryable() bool {
	return t == ErrorTransient || t == ErrorRate
}

// Disabling reports whether a failure of this type should disable the
// provider for the rest of the session.
func (t ErrorType) Disabling() bool {
	return t == ErrorQuota || t == ErrorAuth
}
