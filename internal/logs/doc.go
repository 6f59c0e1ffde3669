// Package logs reads the server's rotating log file for the CLI.
package logs
