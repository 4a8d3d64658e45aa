// Package encoding implements the Base58Check encoding pkg/keys uses to
// render a secp256k1 public key hash as a printable wallet address.
package encoding

import (
	"crypto/sha256"
	"errors"
	"math/big"
)

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	radix       = big.NewInt(58)
	alphabetIdx [128]int8
)

func init() {
	for i := range alphabetIdx {
		alphabetIdx[i] = -1
	}
	for i, c := range alphabet {
		alphabetIdx[c] = int8(i)
	}
}

// ErrInvalidAddress is returned for a malformed or checksum-failing string.
var ErrInvalidAddress = errors.New("encoding: invalid base58check string")

// EncodeBase58Check encodes version||payload with a trailing 4-byte
// double-SHA256 checksum, Base58-rendered.
func EncodeBase58Check(version byte, payload []byte) string {
	body := make([]byte, 1+len(payload))
	body[0] = version
	copy(body[1:], payload)
	full := append(body, checksum(body)...)
	return encodeBase58(full)
}

// DecodeBase58Check reverses EncodeBase58Check, rejecting a bad checksum.
func DecodeBase58Check(s string) (version byte, payload []byte, err error) {
	decoded, err := decodeBase58(s)
	if err != nil {
		return 0, nil, err
	}
	if len(decoded) < 5 {
		return 0, nil, ErrInvalidAddress
	}

	body, sum := decoded[:len(decoded)-4], decoded[len(decoded)-4:]
	want := checksum(body)
	for i := range want {
		if sum[i] != want[i] {
			return 0, nil, ErrInvalidAddress
		}
	}
	return body[0], body[1:], nil
}

func checksum(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:4]
}

func encodeBase58(data []byte) string {
	x := new(big.Int).SetBytes(data)
	zero := big.NewInt(0)
	mod := new(big.Int)

	var out []byte
	for x.Cmp(zero) > 0 {
		x.DivMod(x, radix, mod)
		out = append(out, alphabet[mod.Int64()])
	}
	for _, b := range data {
		if b != 0 {
			break
		}
		out = append(out, alphabet[0])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func decodeBase58(s string) ([]byte, error) {
	x := big.NewInt(0)
	for _, c := range s {
		if c > 127 || alphabetIdx[c] == -1 {
			return nil, ErrInvalidAddress
		}
		x.Mul(x, radix)
		x.Add(x, big.NewInt(int64(alphabetIdx[c])))
	}

	decoded := x.Bytes()
	for _, c := range s {
		if c != rune(alphabet[0]) {
			break
		}
		decoded = append([]byte{0}, decoded...)
	}
	return decoded, nil
}
