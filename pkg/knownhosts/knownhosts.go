// Package knownhosts maintains the local SSH known_hosts file: entries for
// freshly created or destroyed nodes are removed so recycled IP addresses
// do not trip host key conflicts on the next connection.
package knownhosts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is a handle to a known_hosts file.
type File struct {
	path string
}

// New returns a handle for the given path.
func New(path string) *File {
	return &File{path: path}
}

// Default returns a handle for ~/.ssh/known_hosts.
func Default() (*File, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return New(filepath.Join(home, ".ssh", "known_hosts")), nil
}

// RemoveIPs drops every entry mentioning one of the given addresses. The
// file is rewritten only after a successful read; a missing file is not an
// error.
func (f *File) RemoveIPs(ips []string) error {
	if len(ips) == 0 {
		return nil
	}

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read known_hosts: %w", err)
	}

	var kept []string
	for _, entry := range strings.Split(string(data), "\n") {
		if entry == "" || mentionsAny(entry, ips) {
			continue
		}
		kept = append(kept, entry)
	}

	out := strings.Join(kept, "\n") + "\n"
	if err := os.WriteFile(f.path, []byte(out), 0o600); err != nil {
		return fmt.Errorf("failed to rewrite known_hosts: %w", err)
	}
	return nil
}

func mentionsAny(entry string, ips []string) bool {
	for _, ip := range ips {
		if ip != "" && strings.Contains(entry, ip) {
			return true
		}
	}
	return false
}
