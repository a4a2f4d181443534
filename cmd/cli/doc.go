// Package cli wires the hubctl command-line application.
//
// It assembles the Cobra root command, loads layered configuration through
// Viper, constructs the zap logger and the GitHub gateway, and registers the
// push and branch tool commands.
package cli
