// Package sshutil formats SSH connection strings for display.
package sshutil

import (
	"fmt"
	"strings"
)

// Command returns the ssh invocation for a node address, ready to paste.
// IPv6 addresses do not need brackets in the ssh command form.
func Command(user, ip string) string {
	return fmt.Sprintf("ssh %s@%s", user, ip)
}

// Address returns a dialable host:port. IPv6 addresses are bracketed.
func Address(ip string, port int) string {
	if IsIPv6(ip) && !strings.HasPrefix(ip, "[") {
		return fmt.Sprintf("[%s]:%d", ip, port)
	}
	return fmt.Sprintf("%s:%d", ip, port)
}

// IsIPv6 reports whether the address looks like IPv6.
func IsIPv6(ip string) bool {
	return strings.Contains(ip, ":")
}
