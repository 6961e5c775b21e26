package cli

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/backup"
	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/services"
	"github.com/dmitrijs2005/todokeeper/internal/unlock"
	"github.com/dmitrijs2005/todokeeper/internal/validation"
)

var errInvalidID = errors.New("task id must be a positive number")

var internalMessage = common.ErrorInternal.Error()

// describeError turns an error into a message for the user. Errors the user
// cannot act on are reported as common.ErrorInternal.
func describeError(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		keys := make([]string, 0, len(verr.Fields))
		for k := range verr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		lines := make([]string, len(keys))
		for i, k := range keys {
			lines[i] = "  " + k + " " + verr.Fields[k]
		}
		return "invalid input:\n" + strings.Join(lines, "\n")
	}

	switch {
	case errors.Is(err, common.ErrorNotFound):
		return "task not found"
	case errors.Is(err, unlock.ErrDenied):
		return "unlock denied"
	case errors.Is(err, backup.ErrNotFound):
		return "backup not found"
	case errors.Is(err, common.ErrorUnauthorized):
		return "not logged in"
	}

	for _, known := range []error{
		errInvalidID,
		services.ErrUserExists,
		services.ErrInvalidCredentials,
		services.ErrBackupOwner,
		services.ErrBackupFormat,
		services.ErrBackupKey,
		services.ErrTaskChanged,
		backup.ErrInvalidKey,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return internalMessage
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
