package sclient

import (
	"crypto/md5" //nolint:gosec // required for interop with the backend's routing hash, not for security
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"

	"github.com/sclientgo/sclient/internal/errs"
)

// sid is the fixed service-id byte embedded in every generated key
// (spec §3, GLOSSARY).
const sid byte = 0x59

// RoutingParams are the inputs KeyGen needs beyond the cos byte
// (spec §3). All three fields must be non-empty when KeyGen is invoked.
type RoutingParams struct {
	BucketName string
	Namespace  string
	Owner      string
}

// KeyGen produces a 20-byte routing-encoded identifier rendered as 40
// uppercase hex characters, per spec §3's byte layout table. It consumes 11
// bytes from a cryptographically strong random source. An empty routing
// field is rejected as InvalidArgument; otherwise a random-source failure is
// the only failure mode, surfaced as an Internal error (spec §4.2).
func KeyGen(p RoutingParams, cos byte) (string, error) {
	if p.BucketName == "" || p.Namespace == "" || p.Owner == "" {
		return "", errs.New(errs.InvalidArgument, "keygen", false, nil)
	}

	hashBucket := md5.Sum([]byte(p.BucketName))   //nolint:gosec
	hashNamespace := md5.Sum([]byte(p.Namespace)) //nolint:gosec
	hashOwner := md5.Sum([]byte(p.Owner))         //nolint:gosec

	var buf [20]byte
	if _, err := io.ReadFull(rand.Reader, buf[0:8]); err != nil {
		return "", errs.New(errs.Internal, "keygen", false, err)
	}
	if _, err := io.ReadFull(rand.Reader, buf[16:19]); err != nil {
		return "", errs.New(errs.Internal, "keygen", false, err)
	}

	buf[8] = hashNamespace[0]
	buf[9] = hashNamespace[1] ^ hashOwner[0]
	buf[10] = hashOwner[1]
	buf[11] = hashOwner[2] ^ hashBucket[0]
	copy(buf[12:16], hashBucket[1:5])
	buf[15] = sid
	buf[19] = cos

	return strings.ToUpper(hex.EncodeToString(buf[:])), nil
}
