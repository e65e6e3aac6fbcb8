// Package main is the entry point for the buildscout CLI.
package main

import "buildscout.dev/pkg/buildscout/cmd"

func main() {
	cmd.Execute()
}
