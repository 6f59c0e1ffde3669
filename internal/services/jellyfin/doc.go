// Package jellyfin tells a Jellyfin (or Emby) server to rescan its libraries
// once new episodes have been placed.
package jellyfin
