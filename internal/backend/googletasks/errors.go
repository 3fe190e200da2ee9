package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"

	"thingsync/internal/service"
)

// wrapError classifies API errors into the service sentinels so callers
// can decide between retry, skip and abort.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked (run: thingsync login): %v", service.ErrAuth, err)
		case apiErr.Code == http.StatusNotFound:
			return fmt.Errorf("%w: %v", service.ErrNotFound, err)
		case apiErr.Code >= 500 || apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", service.ErrTransient, err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", service.ErrTransient)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", service.ErrTransient, err)
	}

	return err
}
