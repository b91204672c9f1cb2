//go:build !unix

package logging

import "os"

// Advisory locks are not taken on this platform; concurrent runs may interleave lines.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) {}
