package xdg

import (
	"fmt"
	"os"
	"os/user"

	"github.com/mitchellh/go-homedir"
)

// SocketPath returns the Unix socket path of ade-xdgd
func SocketPath() (string, error) {
	// Check environment variable first
	if socketPath := os.Getenv("ADE_XDGD_SOCK"); socketPath != "" {
		expanded, err := homedir.Expand(socketPath)
		if err != nil {
			return "", fmt.Errorf("failed to expand socket path: %w", err)
		}
		return expanded, nil
	}

	// Default: use user ID-based path
	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	return fmt.Sprintf("/tmp/ade-%s/xdgd", currentUser.Uid), nil
}
