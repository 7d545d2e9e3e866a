package cmd

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
)

// Environment variables passing the global flags to extensions.
const (
	EnvConfigFile = "FDASH_CONFIG"
	EnvVerbose    = "FDASH_VERBOSE"
	EnvRaw        = "FDASH_RAW"
)

// ExtensionPrefix prefixes the name of extension binaries, fdash-<subcommand>.
const ExtensionPrefix = "fdash-"

// extensionEnv returns the global flags as environment variables. The config
// file path is made absolute.
func extensionEnv() []string {
	config := *configFile
	if config != "" {
		if abs, err := filepath.Abs(config); err == nil {
			config = abs
		}
	}
	return []string{
		EnvConfigFile + "=" + config,
		EnvVerbose + "=" + strconv.FormatBool(*Verbose),
		EnvRaw + "=" + strconv.FormatBool(*rawOutput),
	}
}

// RunExtension attempts to find and execute an external fdash-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := ExtensionPrefix + subcommand

	// Look for the external command in PATH
	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		log.Printf("External command %q not found in PATH: %v", externalCmdName, err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
				return true, status.ExitStatus()
			}
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}
