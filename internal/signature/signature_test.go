package signature_test

import (
	"testing"

	"github.com/nibbabob/portdog/internal/signature"
	"github.com/stretchr/testify/assert"
)

func TestMatcher(t *testing.T) {
	matcher := signature.NewMatcher()

	t.Run("identifies ssh banner with version", func(st *testing.T) {
		match, ok := matcher.Match("SSH-2.0-OpenSSH_6.6.1p1 Ubuntu-2ubuntu2.13")

		assert.True(st, ok)
		assert.Equal(st, "ssh", match.Service)
		assert.Equal(st, "6.6.1p1", match.Version)
	})

	t.Run("identifies ssh banner without version capture", func(st *testing.T) {
		match, ok := matcher.Match("SSH-2.0-dropbear")

		assert.True(st, ok)
		assert.Equal(st, "ssh", match.Service)
		assert.Empty(st, match.Version)
	})

	t.Run("prefers server header over generic http rule", func(st *testing.T) {
		raw := "HTTP/1.1 200 OK\r\nServer: nginx/1.4.6 (Ubuntu)\r\n\r\n"

		match, ok := matcher.Match(raw)

		assert.True(st, ok)
		assert.Equal(st, "http", match.Service)
		assert.Contains(st, match.Version, "nginx/1.4.6")
	})

	t.Run("falls back to generic http rule without server header", func(st *testing.T) {
		match, ok := matcher.Match("HTTP/1.0 404 Not Found\r\n\r\n")

		assert.True(st, ok)
		assert.Equal(st, "http", match.Service)
		assert.Empty(st, match.Version)
	})

	t.Run("identifies greeting banners", func(st *testing.T) {
		cases := []struct {
			banner  string
			service string
		}{
			{"220 ProFTPD 1.3.5 Server ready", "ftp"},
			{"220 mail.example.com ESMTP Postfix", "smtp"},
			{"+OK Dovecot ready.", "pop3"},
			{"* OK [CAPABILITY IMAP4rev1] ready", "imap"},
			{"-ERR unknown command 'HEAD'", "redis"},
		}

		for _, c := range cases {
			match, ok := matcher.Match(c.banner)

			assert.True(st, ok, "banner: %q", c.banner)
			assert.Equal(st, c.service, match.Service, "banner: %q", c.banner)
		}
	})

	t.Run("returns no match for unrecognized text", func(st *testing.T) {
		_, ok := matcher.Match("hello world")

		assert.False(st, ok)
	})

	t.Run("is deterministic across repeated invocations", func(st *testing.T) {
		banner := "HTTP/1.1 200 OK\r\nServer: Apache/2.4.41\r\n"

		first, ok := matcher.Match(banner)
		assert.True(st, ok)

		for i := 0; i < 50; i++ {
			again, ok := matcher.Match(banner)

			assert.True(st, ok)
			assert.Equal(st, first, again)
		}
	})
}
