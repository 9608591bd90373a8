package docker

import "strings"

// Push error categories used for operator guidance.
const (
	ErrCategoryAuth     = "auth_error"
	ErrCategoryNetwork  = "network_error"
	ErrCategoryNotFound = "not_found"
	ErrCategoryPush     = "push_error"
)

// CategorizePushError maps a push failure and its CLI output to one of
// the error categories above. The tool layer turns the category into
// operator-facing guidance.
func CategorizePushError(err error, output string) string {
	if err == nil {
		return ""
	}
	errStr := strings.ToLower(err.Error())
	outputStr := strings.ToLower(output)

	if containsAny(errStr, outputStr, "unauthorized", "authentication", "denied") {
		return ErrCategoryAuth
	}
	if containsAny(errStr, outputStr, "connection refused", "no such host", "timeout", "timed out", "network") {
		return ErrCategoryNetwork
	}
	if containsAny(errStr, outputStr, "not found", "does not exist", "manifest unknown", "repository does not exist") {
		return ErrCategoryNotFound
	}
	return ErrCategoryPush
}

// PushGuidance turns an error category into a hint the operator can
// act on.
func PushGuidance(category, registry string) string {
	switch category {
	case ErrCategoryAuth:
		return "Authentication failed. Run 'docker login " + registry + "' and retry."
	case ErrCategoryNetwork:
		return "Could not reach the registry. Check network connectivity and the registry hostname."
	case ErrCategoryNotFound:
		return "The repository does not exist on the registry. Verify the image name, or create the repository first."
	default:
		return "The push was rejected by the registry. Inspect the output for details."
	}
}

// ExtractRegistry returns the registry host of an image reference, or
// "docker.io" for bare references.
func ExtractRegistry(ref string) string {
	parts := strings.SplitN(ref, "/", 2)
	// A registry host contains a dot, a colon, or is "localhost".
	if len(parts) == 2 && (strings.ContainsAny(parts[0], ".:") || parts[0] == "localhost") {
		return parts[0]
	}
	return "docker.io"
}

func containsAny(errStr, outputStr string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(errStr, p) || strings.Contains(outputStr, p) {
			return true
		}
	}
	return false
}
