// Package daemonctl is the CLI side of the status API: it queries a running
// server and asks it to start a pass early.
package daemonctl
