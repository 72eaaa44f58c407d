// Package metadata stores small named values of the local client state: the
// bearer credential and the profile snapshot of the signed-in user.
//
// The SQLite implementation works over dbx.DBTX, so it can run inside a
// transaction opened with dbx.WithTx when several values must change
// together.
package metadata
