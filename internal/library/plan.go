package library

import (
	"cmp"
	"maps"
	"slices"

	"showsync/internal/filestore"
	"showsync/internal/naming"
)

// Action moves one episode file into the destination season directory,
// renaming it first when the canonical name differs.
type Action struct {
	Season     int
	Episode    int
	SourceDir  string
	SourceName string
	DestDir    string
	DestName   string
}

// NeedsRename reports whether the file must be renamed before the move.
func (a Action) NeedsRename() bool {
	return a.SourceName != a.DestName
}

// SourcePath is the file's location before the action runs.
func (a Action) SourcePath() string {
	return filestore.Join(a.SourceDir, a.SourceName)
}

// DestPath is the file's location after the action runs.
func (a Action) DestPath() string {
	return filestore.Join(a.DestDir, a.DestName)
}

// MovePlan is the set of actions that brings one destination season up to
// date with its source.
type MovePlan struct {
	Show    string
	Season  int
	DestDir string
	Actions []Action
	// Existing lists source episodes skipped because the destination already
	// has them.
	Existing []int
}

// Empty reports whether the plan has nothing to do.
func (p MovePlan) Empty() bool {
	return len(p.Actions) == 0
}

// Plan diffs a source season against the destination season. Episodes the
// destination already holds are never touched; everything else gets an
// action, ordered by episode number.
func Plan(show string, season int, sourceDir, destDir string, source, existing SeasonBucket) MovePlan {
	plan := MovePlan{Show: show, Season: season, DestDir: destDir}
	for _, episode := range source.Episodes() {
		file := source[episode]
		if _, ok := existing[episode]; ok {
			plan.Existing = append(plan.Existing, episode)
			continue
		}
		plan.Actions = append(plan.Actions, Action{
			Season:     season,
			Episode:    episode,
			SourceDir:  sourceDir,
			SourceName: file.FileName,
			DestDir:    destDir,
			DestName:   naming.EpisodeFileName(show, season, episode, file.Extension),
		})
	}
	return plan
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
