package registry

import (
	"context"
	"time"

	"github.com/fulmenhq/appversion/pkg/logger"
	"github.com/fulmenhq/appversion/pkg/versioning"
)

// UpdateNotice is returned when a newer release exists.
type UpdateNotice struct {
	Current string
	Latest  string
}

// CheckForUpdate compares current with the latest release of name. It is
// best effort: every failure is logged at debug level and yields nil.
func CheckForUpdate(ctx context.Context, client Client, name, current string, timeout time.Duration) *UpdateNotice {
	if client == nil || name == "" {
		return nil
	}
	if _, err := versioning.ParseLenient(current); err != nil {
		logger.Debug("Update check skipped for non-release build", logger.String("current", current))
		return nil
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	release, err := client.LatestVersion(ctx, name)
	if err != nil {
		logger.Debug("Update check failed", logger.String("package", name), logger.Err(err))
		return nil
	}
	if !versioning.IsNewer(release.Version, current) {
		return nil
	}
	return &UpdateNotice{Current: current, Latest: release.Version}
}
