package util

import (
	"log"
	"os"
)

// Logging is a clumsy switch that affects what Logf does.
//
// If Logging is true, then Logf calls log.Printf.  Setting the
// environment variable PATMATCH_LOG to anything turns it on at
// startup.
var Logging = os.Getenv("PATMATCH_LOG") != ""

// Logf is a silly utility function that calls log.Printf if Logging
// is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	log.Printf(format, args...)
}
