package things

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strconv"
	"time"
)

// EffectTimeout bounds a single `open` invocation.
const EffectTimeout = 5 * time.Second

// ErrNoAuthToken is returned when an update or cancel effect is
// attempted without a Things auth token configured.
var ErrNoAuthToken = errors.New("things auth token not configured")

// OpenFunc launches a things:/// URL. The default implementation shells
// out to the macOS `open` command.
type OpenFunc func(ctx context.Context, rawURL string) error

// URLApplier implements Applier via the Things URL scheme.
type URLApplier struct {
	authToken string
	open      OpenFunc
}

// NewURLApplier creates an applier that opens URLs with the macOS `open`
// command. Update and Cancel require the auth token; Add does not.
func NewURLApplier(authToken string) *URLApplier {
	return &URLApplier{authToken: authToken, open: openURL}
}

// NewURLApplierWithOpener creates an applier with a custom opener (for
// testing).
func NewURLApplierWithOpener(authToken string, open OpenFunc) *URLApplier {
	return &URLApplier{authToken: authToken, open: open}
}

// Add creates a new task.
func (a *URLApplier) Add(ctx context.Context, p AddParams) error {
	v := url.Values{}
	v.Set("title", p.Title)
	if p.Notes != "" {
		v.Set("notes", p.Notes)
	}
	if p.When != "" {
		v.Set("when", p.When)
	}
	if p.Deadline != "" {
		v.Set("deadline", p.Deadline)
	}
	v.Set("reveal", "false")
	return a.open(ctx, "things:///add?"+v.Encode())
}

// Update applies a partial update to a task.
func (a *URLApplier) Update(ctx context.Context, id string, u Update) error {
	if a.authToken == "" {
		return ErrNoAuthToken
	}
	v := url.Values{}
	v.Set("id", id)
	v.Set("auth-token", a.authToken)
	if u.Completed != nil {
		v.Set("completed", strconv.FormatBool(*u.Completed))
	}
	if u.Deadline != nil {
		v.Set("deadline", *u.Deadline)
	}
	if u.Canceled {
		v.Set("canceled", "true")
	}
	return a.open(ctx, "things:///update?"+v.Encode())
}

// Cancel archives a task.
func (a *URLApplier) Cancel(ctx context.Context, id string) error {
	return a.Update(ctx, id, Update{Canceled: true})
}

// openURL runs `open <url>` with a bounded timeout. A non-zero exit
// status is the only failure signal available.
func openURL(ctx context.Context, rawURL string) error {
	ctx, cancel := context.WithTimeout(ctx, EffectTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "open", rawURL)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("open %s: %w: %s", rawURL, err, out)
	}
	return nil
}
