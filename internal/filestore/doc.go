// Package filestore abstracts the remote file tree showsync reconciles.
//
// OpenList talks to an OpenList/AList server over its JSON fs API; Local
// operates on an afero filesystem, either a mounted directory or an in-memory
// tree for tests. Both map a missing object to services.ErrNotFound and return
// an empty listing for a directory that does not exist.
package filestore
