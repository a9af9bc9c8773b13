package application

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMalformedPasswordHash reports a stored hash that does not follow the
// encoded argon2id layout this service writes.
var ErrMalformedPasswordHash = errors.New("malformed password hash")

// argon2Settings pins the cost parameters baked into every stored hash.
// Changing them only affects newly hashed passwords; verification reads the
// costs back out of the stored string.
type argon2Settings struct {
	memoryKiB   uint32
	passes      uint32
	lanes       uint8
	saltBytes   uint32
	digestBytes uint32
}

var defaultArgon2Settings = argon2Settings{
	memoryKiB:   64 * 1024,
	passes:      3,
	lanes:       2,
	saltBytes:   16,
	digestBytes: 32,
}

// HashPassword derives an argon2id digest from the password and encodes it
// together with its salt and cost parameters, so the stored string is
// self-describing. It satisfies PasswordHasher.
func HashPassword(password string) (string, error) {
	return hashPassword(password, defaultArgon2Settings)
}

func hashPassword(password string, settings argon2Settings) (string, error) {
	salt := make([]byte, settings.saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate password salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, settings.passes, settings.memoryKiB, settings.lanes, settings.digestBytes)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		settings.memoryKiB, settings.passes, settings.lanes,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// VerifyPassword re-derives the digest for the candidate password using the
// salt and costs recorded in hashedPassword and compares in constant time.
// A mismatch is ErrInvalidCredentials; a hash this service could not have
// written is ErrMalformedPasswordHash. It satisfies PasswordVerifier.
func VerifyPassword(hashedPassword, password string) error {
	settings, salt, digest, err := decodePasswordHash(hashedPassword)
	if err != nil {
		return err
	}

	candidate := argon2.IDKey([]byte(password), salt, settings.passes, settings.memoryKiB, settings.lanes, settings.digestBytes)
	if subtle.ConstantTimeCompare(digest, candidate) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func decodePasswordHash(encoded string) (argon2Settings, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return argon2Settings{}, nil, nil, ErrMalformedPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return argon2Settings{}, nil, nil, ErrMalformedPasswordHash
	}

	var settings argon2Settings
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &settings.memoryKiB, &settings.passes, &settings.lanes); err != nil {
		return argon2Settings{}, nil, nil, ErrMalformedPasswordHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return argon2Settings{}, nil, nil, ErrMalformedPasswordHash
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return argon2Settings{}, nil, nil, ErrMalformedPasswordHash
	}
	settings.saltBytes = uint32(len(salt))
	settings.digestBytes = uint32(len(digest))

	return settings, salt, digest, nil
}
