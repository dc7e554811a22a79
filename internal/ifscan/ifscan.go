// Package ifscan parses the textual interface listing produced by
// `ip addr show` into structured records. The parser is pure: the raw text is
// supplied by a mesh.InterfaceSource collaborator, so nothing here spawns a
// process or touches the network.
package ifscan

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"github.com/wgmesh/wgmesh/pkg/mesh"
)

var (
	reHeader = regexp.MustCompile(`^\d+: ([0-9a-zA-Z\-@]+)`)
	reState  = regexp.MustCompile(`state (\w+)`)
	reMAC    = regexp.MustCompile(`link/\w+ (([0-9a-f]{2}:?){6})`)
	reAddr   = regexp.MustCompile(`inet (\d+\.\d+\.\d+\.\d+/\d+)|inet6 (([0-9a-f]:*)+/\d+)`)
)

// MissingFieldError reports which required field could not be located in an
// interface block.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("unable to parse interface %s", e.Field)
}

// Parse splits the listing into per-interface blocks and extracts a record
// from each. Name, state and MAC are required; address tokens are extracted
// best-effort and unparseable ones are skipped. A block with no addresses
// still yields a valid record.
func Parse(text string) ([]mesh.Interface, error) {
	var blocks [][]string
	for _, line := range strings.Split(text, "\n") {
		if reHeader.MatchString(line) {
			blocks = append(blocks, []string{line})
			continue
		}
		if len(blocks) == 0 {
			// Noise before the first numbered header.
			continue
		}
		blocks[len(blocks)-1] = append(blocks[len(blocks)-1], line)
	}

	ifaces := make([]mesh.Interface, 0, len(blocks))
	for _, block := range blocks {
		iface, err := parseBlock(block)
		if err != nil {
			return nil, err
		}
		ifaces = append(ifaces, iface)
	}
	return ifaces, nil
}

func parseBlock(lines []string) (mesh.Interface, error) {
	header := lines[0]

	name := captureFirst(reHeader, header)
	if name == "" {
		return mesh.Interface{}, &MissingFieldError{Field: "name"}
	}
	state := captureFirst(reState, header)
	if state == "" {
		return mesh.Interface{}, &MissingFieldError{Field: "state"}
	}

	var mac string
	for _, line := range lines[1:] {
		if mac = captureFirst(reMAC, line); mac != "" {
			break
		}
	}
	if mac == "" {
		return mesh.Interface{}, &MissingFieldError{Field: "MAC"}
	}

	var addresses []netip.Prefix
	for _, line := range lines[1:] {
		m := reAddr.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// Capture 1 is the IPv4 form, capture 2 the IPv6 form.
		token := m[1]
		if token == "" {
			token = m[2]
		}
		prefix, err := netip.ParsePrefix(token)
		if err != nil {
			continue
		}
		addresses = append(addresses, prefix)
	}

	return mesh.Interface{
		Name:      name,
		MAC:       mac,
		State:     state,
		Addresses: addresses,
	}, nil
}

func captureFirst(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
