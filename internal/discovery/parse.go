package discovery

import (
	"regexp"
	"strings"

	"prodassist/internal/logging"
)

// maxCapabilities bounds one discovery run; a list longer than this is almost
// certainly the lister enumerating files rather than product domains.
const maxCapabilities = 50

var numberedItem = regexp.MustCompile(`^\d+\.\s*(.+)$`)
var numberedItemStrict = regexp.MustCompile(`^\d+\.\s+.+`)

// ParseCapabilities extracts validated capability names from the lister's raw
// output. Conversational output is rejected wholesale; otherwise parsing
// starts at the first numbered item and stops at the first non-numbered line
// after at least one item was collected.
func ParseCapabilities(output string) []string {
	if output == "" {
		return nil
	}

	if conversationalFirstLine(output) {
		logging.DiscoveryWarn("capability lister returned conversational output, rejecting")
		return nil
	}

	lines := strings.Split(output, "\n")
	start := -1
	for i, line := range lines {
		if numberedItemStrict.MatchString(strings.TrimSpace(line)) {
			start = i
			break
		}
	}
	if start < 0 {
		logging.DiscoveryWarn("no numbered list found in capability lister output")
		return nil
	}

	var names []string
	for _, line := range lines[start:] {
		line = strings.TrimSpace(line)
		if m := numberedItem.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[1])
			if name != "" && ValidName(name) {
				names = append(names, name)
			}
		} else if line != "" && len(names) > 0 {
			break
		}
	}

	if len(names) > maxCapabilities {
		names = names[:maxCapabilities]
	}
	return names
}
