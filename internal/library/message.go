package library

import (
	"fmt"
	"slices"
)

// ComposeMessage words the notification for episodes that were just placed.
// It returns false when there is nothing to announce.
func ComposeMessage(show string, season int, episodes []int) (string, bool) {
	if len(episodes) == 0 {
		return "", false
	}
	sorted := slices.Clone(episodes)
	slices.Sort(sorted)
	first, last := sorted[0], sorted[len(sorted)-1]
	if len(sorted) == 1 || first == last {
		return fmt.Sprintf("%s season %d episode %d ready", show, season, first), true
	}
	return fmt.Sprintf("%s season %d episodes %d–%d ready", show, season, first, last), true
}
