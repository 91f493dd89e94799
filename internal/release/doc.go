// Package release resolves the newest published browser build from the
// GitHub release catalog using a name-prefix and asset-suffix filter.
package release
