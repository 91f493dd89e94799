// Package updater drives one update pass: probe the installed version,
// resolve the newest published release, and when they differ download the
// zip asset, extract it into a staging directory, stamp the version marker,
// and promote staging over the live installation with remove + rename.
//
// The rename is the only atomic step. Everything before it mutates staging
// only, so a failure mid-extraction leaves the live installation untouched.
package updater
