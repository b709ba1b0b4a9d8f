package common

import "crypto/subtle"

// WipeByteArray overwrites b with zeros. Passwords read from the terminal
// are kept as byte slices so they can be wiped once sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// SamePassword reports whether the password and its confirmation match.
func SamePassword(password, confirm []byte) bool {
	if len(password) != len(confirm) {
		return false
	}
	return subtle.ConstantTimeCompare(password, confirm) == 1
}
