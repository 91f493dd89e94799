// Package marker persists the installed-version marker file that decides
// whether an update run is needed.
package marker
