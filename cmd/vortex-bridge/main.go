// Package main is the entry point for the vortex-bridge binary.
package main

import "os"

func main() {
	os.Exit(Execute())
}
