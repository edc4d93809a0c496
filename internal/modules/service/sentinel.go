package service

import (
	"regexp"
	"strings"
)

// SentinelEmail builds and recognizes the placeholder address given to
// accounts that never set a real email: "<user>+<username>@<host>".
type SentinelEmail struct {
	User string
	Host string

	re *regexp.Regexp
}

func NewSentinelEmail(user, host string) SentinelEmail {
	if user == "" {
		user = "emonotate"
	}
	if host == "" {
		host = "gmail.com"
	}
	pattern := "^" + regexp.QuoteMeta(user) + `\+.*@` + regexp.QuoteMeta(host) + "$"
	return SentinelEmail{User: user, Host: host, re: regexp.MustCompile(pattern)}
}

func (s SentinelEmail) For(username string) string {
	return s.User + "+" + username + "@" + s.Host
}

// IsInvalidEmail reports whether email is empty or a placeholder.
func (s SentinelEmail) IsInvalidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return true
	}
	if s.re == nil {
		return NewSentinelEmail(s.User, s.Host).re.MatchString(email)
	}
	return s.re.MatchString(email)
}
