// Package cli is the interactive terminal front end of todokeeper.
//
// App wires the services to a Prompter and runs a read-eval-print loop with
// the commands listed by "help". On a terminal the prompter uses readline
// (history, line editing, live dd/MM/yyyy date masking); otherwise input is
// read line by line so the program can be scripted.
package cli
