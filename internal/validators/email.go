package validators

import (
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DomainResolver answers whether a mail domain can receive mail.
type DomainResolver func(domain string) bool

// ResolveDomain is swapped in tests to avoid DNS.
var ResolveDomain DomainResolver = lookupDomain

func lookupDomain(domain string) bool {
	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}
	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}
	return false
}

func IsEmailDomainValid(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	return ResolveDomain(email[at+1:])
}

func emailDomain(fl validator.FieldLevel) bool {
	return IsEmailDomainValid(strings.ToLower(strings.TrimSpace(fl.Field().String())))
}
