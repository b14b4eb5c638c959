package fingerprint

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nibbabob/portdog/internal/logger"
	"github.com/nibbabob/portdog/internal/signature"
	"github.com/nibbabob/portdog/internal/timing"
)

const (
	// ServiceUnknown reported when nothing identified the listener
	ServiceUnknown = "unknown"

	// BannerUnresponsive reported for an open port that stayed silent
	// through every probe stage. An expected outcome, not an error.
	BannerUnresponsive = "unresponsive"

	readBufferSize = 2048
	hexPreviewMax  = 24
)

// Engine implements Identifier as a staged probe pipeline: passive
// banner read, port-matched active plaintext probes, a TLS-wrapped
// probe for conventionally encrypted ports, then a generic fallback.
// Each stage is bounded by the run's probe timeout and the pipeline
// short-circuits on the first stage that yields bytes.
type Engine struct {
	matcher *signature.Matcher
	log     logger.Logger
}

// NewEngine returns a fingerprint engine matching banners against the
// given rule table
func NewEngine(matcher *signature.Matcher) *Engine {
	return &Engine{
		matcher: matcher,
		log:     logger.New(),
	}
}

// Identify fingerprints one confirmed-open port. raw, when non-empty,
// is treated as the passive banner stage's output and skips the first
// connection entirely.
func (e *Engine) Identify(
	ctx context.Context,
	target string,
	port uint16,
	raw []byte,
	params timing.Parameters,
) Identification {
	if len(raw) > 0 {
		return e.analyze(raw, port)
	}

	if tlsPorts[port] {
		return e.probeTLS(ctx, target, port, params)
	}

	ident := e.probeCleartext(ctx, target, port, params)

	// a service that ignored every plaintext probe may simply be
	// expecting a TLS handshake
	if ident.Banner == BannerUnresponsive {
		if tlsIdent, ok := e.tryTLS(ctx, target, port, params); ok {
			return tlsIdent
		}
	}

	return ident
}

// tryTLS attempts the TLS stage on a port with no TLS convention. A
// failed handshake reports ok=false so the caller keeps the plaintext
// verdict.
func (e *Engine) tryTLS(
	ctx context.Context,
	target string,
	port uint16,
	params timing.Parameters,
) (Identification, bool) {
	conn, err := e.dial(ctx, target, port, params)

	if err != nil {
		return Identification{}, false
	}

	defer conn.Close()

	tlsConn := tls.Client(conn, &tls.Config{
		InsecureSkipVerify: true,
	})

	handshakeCtx, cancel := context.WithTimeout(ctx, params.ProbeTimeout)
	defer cancel()

	if err := tlsConn.HandshakeContext(handshakeCtx); err != nil {
		return Identification{}, false
	}

	_, _ = tlsConn.Write(httpGet)

	if response := readWithin(tlsConn, params.ProbeTimeout); len(response) > 0 {
		return e.analyze(response, port), true
	}

	return Identification{Service: "tls", Banner: BannerUnresponsive}, true
}

// probeCleartext runs the plaintext stages: passive read first, then
// each applicable active probe on the same connection
func (e *Engine) probeCleartext(
	ctx context.Context,
	target string,
	port uint16,
	params timing.Parameters,
) Identification {
	conn, err := e.dial(ctx, target, port, params)

	if err != nil {
		return Identification{
			Service: ServiceUnknown,
			Banner:  BannerUnresponsive,
		}
	}

	defer conn.Close()

	if response := readWithin(conn, params.ProbeTimeout); len(response) > 0 {
		return e.analyze(response, port)
	}

	// port-matched probes first, generic fallbacks last
	for _, matched := range []bool{true, false} {
		for _, p := range activeProbes {
			if (len(p.ports) > 0) != matched {
				continue
			}

			if matched && !portInList(port, p.ports) {
				continue
			}

			if _, err := conn.Write(p.payload); err != nil {
				continue
			}

			if response := readWithin(conn, params.ProbeTimeout); len(response) > 0 {
				return e.analyze(response, port)
			}
		}
	}

	return Identification{
		Service: ServiceUnknown,
		Banner:  BannerUnresponsive,
	}
}

// probeTLS performs a certificate-blind TLS handshake and repeats the
// active probe through the tunnel. Validation is disabled on purpose:
// the goal is identifying the service, not trusting it.
func (e *Engine) probeTLS(
	ctx context.Context,
	target string,
	port uint16,
	params timing.Parameters,
) Identification {
	conn, err := e.dial(ctx, target, port, params)

	if err != nil {
		return Identification{
			Service: ServiceUnknown,
			Banner:  BannerUnresponsive,
		}
	}

	defer conn.Close()

	tlsConn := tls.Client(conn, &tls.Config{
		InsecureSkipVerify: true,
	})

	handshakeCtx, cancel := context.WithTimeout(ctx, params.ProbeTimeout)
	defer cancel()

	if err := tlsConn.HandshakeContext(handshakeCtx); err != nil {
		e.log.Debug().
			Err(err).
			Uint16("port", port).
			Msg("tls handshake failed")

		return Identification{
			Service: "tls",
			Banner:  "could not complete TLS handshake",
		}
	}

	if httpsPorts[port] {
		_, _ = tlsConn.Write(httpGet)
	}

	if response := readWithin(tlsConn, params.ProbeTimeout); len(response) > 0 {
		return e.analyze(response, port)
	}

	return Identification{
		Service: wellKnownService(port),
		Banner:  BannerUnresponsive,
	}
}

func (e *Engine) dial(
	ctx context.Context,
	target string,
	port uint16,
	params timing.Parameters,
) (net.Conn, error) {
	dialer := net.Dialer{Timeout: params.ConnectTimeout}

	addr := net.JoinHostPort(target, strconv.Itoa(int(port)))

	return dialer.DialContext(ctx, "tcp", addr)
}

// analyze turns raw response bytes into an identification: structured
// SMB responses and non-text payloads get hex-preview banners, text
// goes through the signature rule table
func (e *Engine) analyze(response []byte, port uint16) Identification {
	if isSMBResponse(response, port) {
		return Identification{
			Service: "smb",
			Banner: fmt.Sprintf(
				"[SMB response: %d bytes] %s",
				len(response),
				hexPreview(response),
			),
		}
	}

	if !utf8.Valid(response) {
		return Identification{
			Service: wellKnownService(port),
			Banner: fmt.Sprintf(
				"[binary data: %d bytes] %s",
				len(response),
				hexPreview(response),
			),
		}
	}

	text := string(response)

	if match, ok := e.matcher.Match(text); ok {
		return Identification{
			Service: match.Service,
			Version: match.Version,
			Banner:  firstLine(text),
		}
	}

	return Identification{
		Service: wellKnownService(port),
		Banner:  firstLine(text),
	}
}

// readWithin reads once from conn, bounded by the probe timeout. A
// peer that accepted the connection but never responds returns nil
// here rather than stalling the scan.
func readWithin(conn net.Conn, timeout time.Duration) []byte {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil
	}

	buffer := make([]byte, readBufferSize)

	n, err := conn.Read(buffer)

	if err != nil || n == 0 {
		return nil
	}

	return buffer[:n]
}

// isSMBResponse detects an SMBv1 negotiate reply: NetBIOS session
// prefix plus the 0xFF "SMB" protocol marker
func isSMBResponse(response []byte, port uint16) bool {
	if port != 139 && port != 445 {
		return false
	}

	return bytes.HasPrefix(response, []byte{0x00, 0x00}) &&
		bytes.Contains(response, []byte("\xffSMB"))
}

func portInList(port uint16, list []uint16) bool {
	for _, p := range list {
		if p == port {
			return true
		}
	}

	return false
}

func hexPreview(data []byte) string {
	var sb strings.Builder

	for i, b := range data {
		if i == hexPreviewMax {
			sb.WriteString("...")
			break
		}

		if i > 0 {
			sb.WriteByte(' ')
		}

		fmt.Fprintf(&sb, "%02X", b)
	}

	return sb.String()
}

func firstLine(text string) string {
	trimmed := strings.TrimSpace(text)

	if line, _, ok := strings.Cut(trimmed, "\n"); ok {
		return strings.TrimSpace(line)
	}

	return trimmed
}
