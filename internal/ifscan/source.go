package ifscan

import (
	"fmt"
	"os/exec"
)

// CommandSource captures the local interface listing by running `ip addr
// show`. It satisfies mesh.InterfaceSource; the parser itself never sees the
// command, only the text.
type CommandSource struct{}

// Listing runs the enumeration command and returns its raw output.
func (CommandSource) Listing() (string, error) {
	out, err := exec.Command("ip", "addr", "show").Output()
	if err != nil {
		return "", fmt.Errorf("ip addr show: %w", err)
	}
	return string(out), nil
}
