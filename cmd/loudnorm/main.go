// Package main provides the entry point for the loudnorm batch CLI.
package main

func main() {
	Execute()
}
