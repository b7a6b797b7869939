// Command ftlsim drives the page-mapped FTL/GC simulator over a scripted
// workload, playing the CLI-entry-point role the teacher's akitav5/cmd and
// v5/akita/cmd binaries play for their own engines.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
