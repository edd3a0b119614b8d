package payfast

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidInput is returned when a signature cannot be computed or checked
// because required fields are missing.
var ErrInvalidInput = errors.New("payfast: missing required fields")

// SignatureField is the parameter carrying the digest on the wire.
const SignatureField = "signature"

// Signature computes the PayFast parameter digest: keys sorted
// lexicographically, joined as key=urlencode(value) with '&', with
// '&passphrase=urlencode(secret)' appended when a passphrase is configured.
// The digest is MD5, required for wire compatibility with PayFast's existing
// protocol. It must not be reused for anything security-sensitive.
func Signature(params map[string]string, passphrase string) (string, error) {
	if len(params) == 0 {
		return "", ErrInvalidInput
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if k == SignatureField {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "", ErrInvalidInput
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(encodeComponent(params[k]))
	}
	if passphrase != "" {
		sb.WriteString("&passphrase=")
		sb.WriteString(encodeComponent(passphrase))
	}

	sum := md5.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:]), nil
}

// VerifySignature checks the 'signature' field of a received parameter set
// against the digest recomputed over the remaining fields. It has no side
// effects and fails only on malformed input.
func VerifySignature(params map[string]string, passphrase string) (bool, error) {
	received, ok := params[SignatureField]
	if !ok || received == "" {
		return false, ErrInvalidInput
	}

	expected, err := Signature(params, passphrase)
	if err != nil {
		return false, err
	}

	received = strings.ToLower(strings.TrimSpace(received))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1, nil
}

// encodeComponent matches the JavaScript encodeURIComponent escaping that
// PayFast signatures are computed with: spaces as %20, the marks !~*'()
// left unescaped, uppercase hex otherwise.
func encodeComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	for from, to := range map[string]string{
		"%21": "!",
		"%27": "'",
		"%28": "(",
		"%29": ")",
		"%2A": "*",
		"%7E": "~",
	} {
		escaped = strings.ReplaceAll(escaped, from, to)
	}
	return escaped
}
