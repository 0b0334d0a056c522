package reasoning

import (
	"fmt"
	"strings"
)

// fallbackPlaceholder keeps match responses non-empty when neither the AI nor
// the scoring tags produced anything usable.
const fallbackPlaceholder = "Selected as the strongest overall match for this brief."

// BuildFallbackReasons derives human-readable reasons from scoring tags. The
// result is never empty.
func BuildFallbackReasons(tags []string) []string {
	reasons := make([]string, 0, len(tags))
	for _, tag := range tags {
		reason := reasonFromTag(tag)
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	if len(reasons) == 0 {
		return []string{fallbackPlaceholder}
	}

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}

	return reasons
}

func reasonFromTag(tag string) string {
	switch {
	case tag == "strong_semantic_match":
		return "Portfolio and bio closely match the brief description."
	case tag == "experience_fit":
		return "Experience level lines up with the seniority the brief asks for."
	case strings.HasPrefix(tag, "style:"):
		return fmt.Sprintf("Works in the %s style the brief calls for.", strings.TrimPrefix(tag, "style:"))
	case strings.HasPrefix(tag, "industry:"):
		return fmt.Sprintf("Has prior work in the %s industry.", strings.TrimPrefix(tag, "industry:"))
	case strings.HasPrefix(tag, "category:"):
		return fmt.Sprintf("Offers the %s category requested by the brief.", strings.TrimPrefix(tag, "category:"))
	default:
		return ""
	}
}
