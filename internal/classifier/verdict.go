package classifier

import (
	"strings"

	"github.com/Iron-Ham/termwatch/internal/errors"
)

// ParseVerdict reports whether reply is an affirmative answer. Only "YES"
// and "Y" qualify, compared case-insensitively after trimming whitespace;
// "Yes, the build finished" is not affirmative. An empty reply is a
// protocol error.
func ParseVerdict(reply string) (bool, error) {
	normalized := strings.ToUpper(strings.TrimSpace(reply))
	if normalized == "" {
		return false, errors.NewClassifierError(errors.KindProtocol, "reply was empty", errors.ErrEmptyReply)
	}
	return normalized == "YES" || normalized == "Y", nil
}
