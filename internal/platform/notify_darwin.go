//go:build darwin

package platform

import (
	"context"
	"fmt"
	"os/exec"
)

// Notify displays a notification through Notification Center.
func Notify(ctx context.Context, title, body string, opts Options) (uint32, error) {
	script := fmt.Sprintf("display notification %q with title %q subtitle %q", body, title, opts.appName())
	return 0, exec.CommandContext(ctx, "osascript", "-e", script).Run()
}
