// Package cli is the interactive command-line front end of accountkeeper.
// It prompts for input, calls the account service and prints outcomes; the
// flow command walks the whole account journey step by step.
package cli
