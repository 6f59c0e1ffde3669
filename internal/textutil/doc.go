// Package textutil cleans provider-supplied titles for use in library paths.
package textutil
