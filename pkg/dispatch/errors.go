package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/bims2021/AI-Autocode-Completion/pkg/completion"
)

// classifyTransport maps a client.Do error to a failure kind.
func classifyTransport(err error) completion.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return completion.FailTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return completion.FailTimeout
	}
	return completion.FailNetworkUnreachable
}

// message renders the user-facing text for a failure kind.
func message(kind completion.FailureKind, detail string) string {
	switch kind {
	case completion.FailNetworkUnreachable:
		return "completion service unreachable: " + detail
	case completion.FailServerError:
		return "completion service error: " + detail
	case completion.FailTimeout:
		return "completion request timed out"
	case completion.FailInvalidResponseShape:
		return "completion service returned a malformed response: " + detail
	case completion.FailUnsupportedLanguage:
		return "language not supported: " + detail
	case completion.FailConfigurationInvalid:
		return "configuration invalid: " + detail
	default:
		return detail
	}
}

func statusDetail(code int) string {
	return fmt.Sprintf("status %d", code)
}
