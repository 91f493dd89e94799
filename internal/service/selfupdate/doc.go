// Package selfupdate replaces the running updater binary with the newest
// build published in its own release catalog.
package selfupdate
