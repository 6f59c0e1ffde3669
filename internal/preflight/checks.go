package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"showsync/internal/config"
	"showsync/internal/filestore"
)

// CheckTMDB verifies the API key against the TMDB configuration endpoint.
// It uses a single attempt with a short timeout.
func CheckTMDB(ctx context.Context, baseURL, apiKey string) Result {
	const name = "TMDB"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "api key missing (set TMDB_API_KEY)"}
	}
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	endpoint := base + "/configuration?" + url.Values{"api_key": {strings.TrimSpace(apiKey)}}.Encode()
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "API reachable"}
	case http.StatusUnauthorized:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

// CheckPush reports the configured notification channel. Credentials are
// validated at load time; nothing is sent.
func CheckPush(cfg *config.Config) Result {
	const name = "Notifications"
	switch cfg.Push.Channel {
	case config.ChannelNone:
		return Result{Name: name, Passed: true, Detail: "disabled"}
	case config.ChannelWecom:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("wecom (agent %s, to %s)", cfg.Push.Params["agent_id"], cfg.Push.Params["user_id"])}
	default:
		return Result{Name: name, Passed: true, Detail: cfg.Push.Channel}
	}
}

// CheckTaskSource lists a task's source directory through the store.
func CheckTaskSource(ctx context.Context, store filestore.Store, task config.Task) Result {
	name := "Task " + task.SourceDir

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	entries, err := store.List(checkCtx, task.SourceDir)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	shows := 0
	for _, entry := range entries {
		if entry.IsDir {
			shows++
		}
	}
	if shows == 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("no show directories yet (-> %s)", task.DestDir)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d show directories (-> %s)", shows, task.DestDir)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (service unreachable)"
	}
	return err.Error()
}
