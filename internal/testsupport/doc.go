// Package testsupport holds fixtures shared by package tests: configs rooted
// in temp directories, source trees, a fake TMDB API and a history ledger.
package testsupport
