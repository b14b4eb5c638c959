package fingerprint

// probe is one protocol-specific active payload. Probes with a port
// list only fire on those ports; an empty list marks a last-resort
// fallback probe that fires anywhere.
type probe struct {
	name    string
	payload []byte
	ports   []uint16
}

// smbNegotiate is a minimal SMBv1 Negotiate Protocol request
// advertising the common dialects; anything speaking SMB answers it
var smbNegotiate = []byte(
	"\x00\x00\x00\x85\xff\x53\x4d\x42\x72\x00\x00\x00\x00\x18\x53\xc8" +
		"\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\xff\xfe" +
		"\x00\x00\x00\x00\x00\x62\x00\x02\x50\x43\x20\x4e\x45\x54\x57\x4f" +
		"\x52\x4b\x20\x50\x52\x4f\x47\x52\x41\x4d\x20\x31\x2e\x30\x00\x02" +
		"\x4d\x49\x43\x52\x4f\x53\x4f\x46\x54\x20\x4e\x45\x54\x57\x4f\x52" +
		"\x4b\x53\x20\x31\x2e\x30\x33\x00\x02\x4d\x49\x43\x52\x4f\x53\x4f" +
		"\x46\x54\x20\x4e\x45\x54\x57\x4f\x52\x4b\x53\x20\x33\x2e\x30\x00" +
		"\x02\x4c\x41\x4e\x4d\x41\x4e\x31\x2e\x30\x00\x02\x4c\x4d\x31\x2e" +
		"\x32\x58\x30\x30\x32\x00\x02\x53\x41\x4d\x42\x41\x00\x02\x4e\x54" +
		"\x20\x4c\x41\x4e\x4d\x41\x4e\x20\x31\x2e\x30\x00\x02\x4e\x54\x20" +
		"\x4c\x4d\x20\x30\x2e\x31\x32\x00",
)

// rdpConnectionRequest is an X.224 Connection Request TPDU, the first
// packet of an RDP handshake
var rdpConnectionRequest = []byte(
	"\x03\x00\x00\x13\x0e\xe0\x00\x00\x00\x00\x00\x01\x00\x08\x00\x03\x00\x00\x00",
)

var httpGet = []byte("GET / HTTP/1.0\r\n\r\n")

// activeProbes evaluated in order; specific handshakes before the
// generic newline poke
var activeProbes = []probe{
	{
		name:    "smb-negotiate",
		payload: smbNegotiate,
		ports:   []uint16{139, 445},
	},
	{
		name:    "rdp-connection-request",
		payload: rdpConnectionRequest,
		ports:   []uint16{3389},
	},
	{
		name:    "http-get",
		payload: httpGet,
		ports:   []uint16{80, 8000, 8080, 9993},
	},
	{
		name:    "generic-newline",
		payload: []byte("\r\n\r\n"),
	},
}

// tlsPorts conventionally TLS-wrapped services; these skip the
// plaintext stages and probe through a TLS tunnel directly
var tlsPorts = map[uint16]bool{
	443:  true,
	993:  true,
	995:  true,
	8443: true,
}

// httpsPorts get an HTTP request pushed through the TLS tunnel
var httpsPorts = map[uint16]bool{
	443:  true,
	8443: true,
}

// wellKnownService maps ports to conventional service names, used as a
// heuristic when a service responded but no signature rule matched
func wellKnownService(port uint16) string {
	switch port {
	case 21:
		return "ftp"
	case 22:
		return "ssh"
	case 23:
		return "telnet"
	case 25:
		return "smtp"
	case 53:
		return "dns"
	case 80:
		return "http"
	case 110:
		return "pop3"
	case 139:
		return "netbios-ssn"
	case 143:
		return "imap"
	case 443:
		return "https"
	case 445:
		return "microsoft-ds"
	case 993:
		return "imaps"
	case 995:
		return "pop3s"
	case 1433:
		return "mssql"
	case 3306:
		return "mysql"
	case 3389:
		return "ms-wbt-server"
	case 5432:
		return "postgresql"
	case 6379:
		return "redis"
	case 8443:
		return "https"
	case 27017:
		return "mongodb"
	default:
		return ServiceUnknown
	}
}
