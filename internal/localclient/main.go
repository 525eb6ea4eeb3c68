// Package localclient runs programs on the user's machine, which for
// cloudram means handing a url to the desktop browser.
package localclient

import (
	"bytes"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

type Command struct {
	Command          string
	WorkingDirectory string
	Args             []string
}

type LocalClient struct {
	goos string
	run  func(command Command) (stdout string, stderr string, exitCode int, err error)
}

func NewLocalClient() *LocalClient {
	return &LocalClient{goos: runtime.GOOS, run: executeWithOutput}
}

func (l *LocalClient) RunCommand(command string, arguments []string) (string, error) {
	stdout, _, _, err := l.run(Command{
		Command: command,
		Args:    arguments,
	})
	return stdout, err
}

// OpenCommand is the platform launcher that opens url in the default
// browser.
func OpenCommand(goos string, url string) Command {
	switch goos {
	case "darwin":
		return Command{Command: "open", Args: []string{url}}
	case "windows":
		return Command{Command: "rundll32", Args: []string{"url.dll,FileProtocolHandler", url}}
	default:
		return Command{Command: "xdg-open", Args: []string{url}}
	}
}

func (l *LocalClient) OpenUrl(url string) error {
	if url == "" {
		return errors.New("url cannot be empty")
	}
	command := OpenCommand(l.goos, url)
	if _, err := l.RunCommand(command.Command, command.Args); err != nil {
		return errors.Wrapf(err, "could not open %s", url)
	}
	return nil
}

func executeWithOutput(command Command) (stdout string, stderr string, exitCode int, err error) {
	cmd := exec.Command(command.Command, command.Args...)
	if command.WorkingDirectory != "" {
		cmd.Dir = command.WorkingDirectory
	}

	var stdOut, stdErr bytes.Buffer
	cmd.Stdout = &stdOut
	cmd.Stderr = &stdErr

	runErr := cmd.Run()
	stdout = strings.TrimSuffix(stdOut.String(), "\n")
	stderr = strings.TrimSuffix(stdErr.String(), "\n")
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if runErr != nil {
		if stderr != "" {
			return stdout, stderr, exitCode, errors.Wrap(runErr, stderr)
		}
		return stdout, stderr, exitCode, runErr
	}

	return stdout, stderr, exitCode, nil
}
