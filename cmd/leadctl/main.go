// Command leadctl is the operator CLI for campaign lead assignment.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
