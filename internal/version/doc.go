// Package version carries the updater's own build metadata, distinct from
// the browser versions it installs. The selfupdate command compares
// Short() against the release catalog.
package version
