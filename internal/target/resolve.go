package target

import (
	"context"
	"fmt"
	"net"

	"github.com/nibbabob/portdog/internal/exception"
)

// Resolve turns a user-supplied host into a connectable IPv4/IPv6
// address string. Resolution failure is fatal to a run: no ports can
// be meaningfully evaluated against an address that does not exist.
func Resolve(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return host, nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)

	if err != nil || len(addrs) == 0 {
		return "", fmt.Errorf("%w: %s", exception.ErrUnresolvableTarget, host)
	}

	// prefer an IPv4 address when one exists
	for _, addr := range addrs {
		if v4 := addr.IP.To4(); v4 != nil {
			return v4.String(), nil
		}
	}

	return addrs[0].IP.String(), nil
}
