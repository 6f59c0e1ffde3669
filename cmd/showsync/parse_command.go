package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"showsync/internal/naming"
)

func newParseCommand() *cobra.Command {
	var show string

	cmd := &cobra.Command{
		Use:   "parse NAME...",
		Short: "Show how directory and file names are parsed",
		Long: `Parse each NAME the way a reconciliation pass would. Names with a media
extension are read as episode files; anything else as a show or season
directory. With --show, episode files also print their library file name.`,
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(args))
			for _, name := range args {
				rows = append(rows, parseRow(name, strings.TrimSpace(show)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Kind", "Show", "Year", "Season", "Episode", "Library name"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&show, "show", "", "Canonical show name used to preview library file names")
	return cmd
}

func parseRow(name, show string) []string {
	row := []string{name, "unrecognised", "-", "-", "-", "-", "-"}

	if token, ok := naming.ParseEpisodeToken(name); ok {
		if kind := naming.ClassifyExtension(token.Extension); kind != naming.KindOther {
			row[1] = kindLabel(kind)
			if token.HasSeason {
				row[4] = strconv.Itoa(token.Season)
			}
			row[5] = strconv.Itoa(token.Episode)
			if show != "" && token.HasSeason && kind == naming.KindVideo {
				row[6] = naming.EpisodeFileName(show, token.Season, token.Episode, token.Extension)
			}
			return row
		}
	}

	if season, ok := naming.ParseSeasonToken(name); ok {
		row[1] = "season dir"
		row[4] = strconv.Itoa(season)
		row[6] = naming.SeasonDirName(season)
		return row
	}

	if id, ok := naming.ParseShowIdentity(name); ok {
		row[1] = "show dir"
		row[2] = id.Title
		if id.Year > 0 {
			row[3] = strconv.Itoa(id.Year)
		}
		row[6] = naming.ShowDirName(id.Title, id.Year)
	}
	return row
}

func kindLabel(kind naming.MediaKind) string {
	switch kind {
	case naming.KindVideo:
		return "video"
	case naming.KindSubtitle:
		return "subtitle"
	default:
		return "other"
	}
}
