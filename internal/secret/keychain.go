package secret

import (
	"fmt"
	"os/exec"
	"strings"
)

const keychainService = "poster"

// KeychainStore reads generic passwords from the macOS Keychain via the
// `security` CLI tool.
type KeychainStore struct {
	service string
	command string
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{service: keychainService, command: "security"}
}

// Get returns the password stored for account key.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	cmd := exec.Command(k.command, "find-generic-password",
		"-a", key,
		"-s", k.service,
		"-w", // output only the password
	)
	out, err := cmd.Output()
	if err != nil {
		// "security" exits 44 when the item is missing
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 44 {
			return nil, nil
		}
		return nil, fmt.Errorf("keychain get %s: %w", key, err)
	}
	return []byte(strings.TrimSpace(string(out))), nil
}
