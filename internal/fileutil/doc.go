// Package fileutil moves files within an afero filesystem, including across
// device boundaries where a plain rename fails.
package fileutil
