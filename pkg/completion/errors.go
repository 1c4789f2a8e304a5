package completion

// FailureKind classifies why a completion produced no suggestions.
// Kinds feed the statistics recorder and the user-facing message;
// raw transport errors never leave the dispatch layer.
type FailureKind string

const (
	FailNone                 FailureKind = ""
	FailNetworkUnreachable   FailureKind = "network_unreachable"
	FailServerError          FailureKind = "server_error"
	FailTimeout              FailureKind = "timeout"
	FailInvalidResponseShape FailureKind = "invalid_response_shape"
	FailUnsupportedLanguage  FailureKind = "unsupported_language"
	FailConfigurationInvalid FailureKind = "configuration_invalid"
)
