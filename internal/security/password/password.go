// Package password hashea y verifica passwords.
//
// bcrypt es el default: es el formato que ya guarda la tabla users de la app
// (passlib bcrypt, prefijo $2b$). argon2id queda como alternativa en formato PHC.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm identifica el esquema de hash.
type Algorithm string

const (
	Bcrypt   Algorithm = "bcrypt"
	Argon2id Algorithm = "argon2id"
)

// IsValid retorna true si el algoritmo es soportado (vacío = bcrypt).
func (a Algorithm) IsValid() bool {
	switch a {
	case "", Bcrypt, Argon2id:
		return true
	}
	return false
}

// ErrEmpty se retorna al intentar hashear un password vacío.
var ErrEmpty = errors.New("password: empty password")

// BcryptCost es el costo usado por Hash con Bcrypt.
var BcryptCost = bcrypt.DefaultCost

// Argon2Params parámetros de argon2id.
type Argon2Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

// DefaultArgon2 parámetros por defecto de argon2id.
var DefaultArgon2 = Argon2Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32}

// Hash hashea plain con el algoritmo pedido.
func Hash(alg Algorithm, plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	switch alg {
	case "", Bcrypt:
		b, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
		if err != nil {
			return "", fmt.Errorf("password: bcrypt: %w", err)
		}
		return string(b), nil
	case Argon2id:
		return hashArgon2(DefaultArgon2, plain)
	default:
		return "", fmt.Errorf("password: unknown algorithm %q", alg)
	}
}

// Verify detecta el formato por prefijo ($2a$/$2b$/$2y$ o $argon2id$).
func Verify(plain, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return verifyArgon2(plain, encoded)
	case strings.HasPrefix(encoded, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain)) == nil
	}
	return false
}

// hashArgon2 devuelve un PHC string: $argon2id$v=19$m=...,t=...,p=...$<saltB64>$<dkB64>
func hashArgon2(p Argon2Params, plain string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: salt: %w", err)
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

func verifyArgon2(plain, phc string) bool {
	parts := strings.Split(phc, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, dk
	if len(parts) != 6 {
		return false
	}
	var v int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &v); err != nil || v != argon2.Version {
		return false
	}
	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(plain), salt, t, m, p, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
