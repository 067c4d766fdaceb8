// Package xbrowser opens URLs for watch mode.
package xbrowser

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/pkg/browser"

	"oss.terrastruct.com/xos"
)

// OpenURL opens url in the browser named by $BROWSER, or the system default
// when it's unset. $BROWSER is a shell command that receives the url as $1.
func OpenURL(ctx context.Context, env *xos.Env, url string) error {
	sh := env.Getenv("BROWSER")
	if sh == "" {
		return browser.OpenURL(url)
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("%s \"$1\"", sh), "--", url)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to run %v (out: %q): %w", cmd.Args, out, err)
	}
	return nil
}
