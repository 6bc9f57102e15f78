// Package signature implements the payment gateway's request signing scheme.
//
// Both legs of the protocol authenticate with a keyed digest over a canonical
// ":"-joined string. The field order, the position of the secret, and the set
// of fields differ per direction and are fixed by the gateway's protocol:
//
//	outbound (invoice):      login:amount:invId:secret1:shp_...
//	inbound (confirmation):  amount:invId:secret2:shp_...
//
// Custom shop parameters are appended as key=value pairs sorted
// lexicographically by key. The digest is MD5 rendered as lowercase hex,
// mandated by the gateway rather than chosen by this service.
package signature

import (
	"crypto/hmac"
	"crypto/md5" // #nosec G501 -- digest algorithm fixed by the gateway protocol
	"encoding/hex"
	"sort"
	"strings"
)

// Codec computes and verifies gateway signatures. It holds the merchant
// credentials and nothing else; all methods are pure functions of their
// inputs and the configured secrets.
type Codec struct {
	login          string
	outboundSecret string
	inboundSecret  string
}

// NewCodec creates a codec for the given merchant credentials.
// The two secrets are distinct per the gateway's protocol: outboundSecret
// signs invoice parameters, inboundSecret verifies confirmation callbacks.
func NewCodec(login, outboundSecret, inboundSecret string) *Codec {
	return &Codec{
		login:          login,
		outboundSecret: outboundSecret,
		inboundSecret:  inboundSecret,
	}
}

// Login returns the configured merchant login.
func (c *Codec) Login() string {
	return c.login
}

// SignOutbound computes the signature for an outbound invoice.
// amount must already be formatted with exactly two decimal places.
func (c *Codec) SignOutbound(amount, invoiceID string, custom map[string]string) string {
	fields := []string{c.login, amount, invoiceID, c.outboundSecret}
	return digest(append(fields, customPairs(custom)...))
}

// SignInbound computes the expected signature for an inbound confirmation.
// The merchant login is absent from this leg per the gateway's protocol.
func (c *Codec) SignInbound(amount, invoiceID string, custom map[string]string) string {
	fields := []string{amount, invoiceID, c.inboundSecret}
	return digest(append(fields, customPairs(custom)...))
}

// Verify compares a received signature against the expected one.
// Comparison is case-insensitive (gateways send either hex casing) and
// constant-time. It never returns an error: a malformed digest is simply
// not equal.
func Verify(got, want string) bool {
	return hmac.Equal(
		[]byte(strings.ToLower(got)),
		[]byte(strings.ToLower(want)),
	)
}

// customPairs renders custom shop parameters as key=value pairs sorted
// lexicographically by key, as the gateway hashes them.
func customPairs(custom map[string]string) []string {
	keys := make([]string, 0, len(custom))
	for k := range custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+custom[k])
	}
	return pairs
}

func digest(fields []string) string {
	sum := md5.Sum([]byte(strings.Join(fields, ":"))) // #nosec G401 -- gateway-mandated
	return hex.EncodeToString(sum[:])
}
