package preflight

import (
	"context"

	"showsync/internal/config"
	"showsync/internal/filestore"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check that applies to cfg. store may be nil when it
// could not be constructed; the task checks are then skipped.
func RunAll(ctx context.Context, cfg *config.Config, store filestore.Store) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Data directory", cfg.DataDir)}
	if cfg.Store.Type == config.StoreLocal {
		results = append(results, CheckDirectoryAccess("Store root", cfg.Store.Root))
	}
	results = append(results, CheckTMDB(ctx, cfg.TMDB.BaseURL, cfg.TMDB.APIKey))
	results = append(results, CheckPush(cfg))

	if len(cfg.Tasks) == 0 {
		results = append(results, Result{Name: "Tasks", Detail: "no tasks configured"})
		return results
	}
	if store == nil {
		return results
	}
	for _, task := range cfg.Tasks {
		results = append(results, CheckTaskSource(ctx, store, task))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
