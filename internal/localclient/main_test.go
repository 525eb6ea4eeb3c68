package localclient

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCommand(t *testing.T) {
	url := "http://127.0.0.1:5000/status?ip=10.0.0.5&vm_id=vm-1"

	assert.Equal(t, Command{Command: "open", Args: []string{url}}, OpenCommand("darwin", url))
	assert.Equal(t, Command{Command: "xdg-open", Args: []string{url}}, OpenCommand("linux", url))
	assert.Equal(t, "rundll32", OpenCommand("windows", url).Command)
	assert.Equal(t, url, OpenCommand("windows", url).Args[1])
}

func TestOpenUrl_RunsLauncher(t *testing.T) {
	var seen []Command
	client := &LocalClient{goos: "linux", run: func(command Command) (string, string, int, error) {
		seen = append(seen, command)
		return "", "", 0, nil
	}}

	require.NoError(t, client.OpenUrl("http://example.test"))
	require.Len(t, seen, 1)
	assert.Equal(t, "xdg-open", seen[0].Command)
	assert.Equal(t, []string{"http://example.test"}, seen[0].Args)
}

func TestOpenUrl_Errors(t *testing.T) {
	client := &LocalClient{goos: "linux", run: func(command Command) (string, string, int, error) {
		return "", "no display", 1, errors.New("exit status 1")
	}}

	assert.Error(t, client.OpenUrl(""))

	err := client.OpenUrl("http://example.test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not open http://example.test")
}
