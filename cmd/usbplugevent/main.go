package main

import (
	"fmt"
	"os"

	"github.com/initmaster/USBPlugEvent/internal/sysutil"
)

func main() {
	err := newRootCmd().Execute()
	_ = sysutil.Log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
