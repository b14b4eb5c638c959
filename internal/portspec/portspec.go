package portspec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nibbabob/portdog/internal/exception"
)

const (
	// MinPort lowest scannable port
	MinPort = 1
	// MaxPort highest scannable port
	MaxPort = 65535

	// DefaultSpec ports scanned when the user provides no specification
	DefaultSpec = "1-1024"

	// FullRangeSpec literal meaning "scan everything"
	FullRangeSpec = "-"
)

// PortSpec is a deduplicated set of target ports with a deterministic
// (ascending) iteration order so progress reporting and final results
// are reproducible across runs
type PortSpec struct {
	ports []uint16
}

// Parse expands a port specification into a PortSpec. The grammar is a
// comma-separated list of single ports and/or inclusive ranges ("a-b"),
// or the literal "-" for the full 1-65535 range.
func Parse(spec string) (*PortSpec, error) {
	spec = strings.TrimSpace(spec)

	if spec == "" {
		return nil, fmt.Errorf("%w: empty specification", exception.ErrInvalidPortSpec)
	}

	seen := map[int]struct{}{}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)

		if part == "" {
			continue
		}

		if part == FullRangeSpec {
			for p := MinPort; p <= MaxPort; p++ {
				seen[p] = struct{}{}
			}
			continue
		}

		if start, end, ok := strings.Cut(part, "-"); ok {
			if err := parseRange(start, end, seen); err != nil {
				return nil, err
			}
			continue
		}

		p, err := parsePort(part)

		if err != nil {
			return nil, err
		}

		seen[p] = struct{}{}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: %q contains no ports", exception.ErrInvalidPortSpec, spec)
	}

	ports := make([]int, 0, len(seen))

	for p := range seen {
		ports = append(ports, p)
	}

	sort.Ints(ports)

	out := make([]uint16, len(ports))

	for i, p := range ports {
		out[i] = uint16(p)
	}

	return &PortSpec{ports: out}, nil
}

// Ports returns the set in canonical order
func (s *PortSpec) Ports() []uint16 {
	return s.ports
}

// Len returns the number of distinct ports in the set
func (s *PortSpec) Len() int {
	return len(s.ports)
}

// Contains returns true if port is part of the set
func (s *PortSpec) Contains(port uint16) bool {
	i := sort.Search(len(s.ports), func(i int) bool {
		return s.ports[i] >= port
	})

	return i < len(s.ports) && s.ports[i] == port
}

func parsePort(token string) (int, error) {
	p, err := strconv.Atoi(token)

	if err != nil {
		return 0, fmt.Errorf("%w: invalid port %q", exception.ErrInvalidPortSpec, token)
	}

	if p < MinPort || p > MaxPort {
		return 0, fmt.Errorf(
			"%w: port %d out of range %d-%d",
			exception.ErrInvalidPortSpec,
			p,
			MinPort,
			MaxPort,
		)
	}

	return p, nil
}

func parseRange(startTok, endTok string, seen map[int]struct{}) error {
	start, err := parsePort(strings.TrimSpace(startTok))

	if err != nil {
		return err
	}

	end, err := parsePort(strings.TrimSpace(endTok))

	if err != nil {
		return err
	}

	if start > end {
		return fmt.Errorf(
			"%w: range start %d greater than end %d",
			exception.ErrInvalidPortSpec,
			start,
			end,
		)
	}

	for p := start; p <= end; p++ {
		seen[p] = struct{}{}
	}

	return nil
}
