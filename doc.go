// Package rsarecover recovers RSA private keys whose two prime factors were
// generated close to each other, and decrypts textbook RSA ciphertexts with
// the recovered key.
//
// The modulus is factored with Fermat's method (see package fermat), after
// which the private exponent is the inverse of the public exponent modulo
// (p-1)(q-1). Recover runs the whole pipeline from public key and ciphertext
// to plaintext. See rsarecover_test.go for an example.
package rsarecover
