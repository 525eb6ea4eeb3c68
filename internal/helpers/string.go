package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

func Sha256Hash(input string) string {
	hashed := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hashed[:])
}

// GetHostUrl normalises a base url, adding a scheme when missing and
// dropping any trailing slash.
func GetHostUrl(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}

	return strings.TrimSuffix(host, "/")
}

func JoinUrl(host string, path string) string {
	return GetHostUrl(host) + "/" + CleanUrlSuffixAndPrefix(path)
}

func CleanUrlSuffixAndPrefix(url string) string {
	url = strings.TrimPrefix(url, "/")
	url = strings.TrimSuffix(url, "/")
	return url
}

// OperationalViewUrl builds the page the user lands on once the resource is
// usable. The id and address travel as query parameters so the page does
// not have to trust any locally cached value.
func OperationalViewUrl(statusUrl string, id string, address string) string {
	base := GetHostUrl(statusUrl)
	u, err := url.Parse(base)
	if err != nil {
		return base
	}

	query := u.Query()
	if id != "" {
		query.Set("vm_id", id)
	}
	if address != "" {
		query.Set("ip", address)
	}
	u.RawQuery = query.Encode()
	return u.String()
}
