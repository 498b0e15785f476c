package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
)

// keyBits is the modulus size of every key pair this package generates.
const keyBits = 2048

// KeyPair holds the RSA keys used for token signing and verification. The
// private key signs, the public key verifies, and both halves belong to the
// same 2048-bit pair. A KeyPair is never mutated after construction.
type KeyPair struct {
	Public  *rsa.PublicKey
	Private *rsa.PrivateKey
}

// KeyStore reads RSA key material from configured filesystem locations. The
// public key file holds a DER-encoded X.509 SubjectPublicKeyInfo structure
// and the private key file a DER-encoded PKCS#8 PrivateKeyInfo structure,
// neither PEM-wrapped.
type KeyStore struct {
	publicPath  string
	privatePath string
}

// NewKeyStore builds a KeyStore over the two key file paths.
func NewKeyStore(publicPath, privatePath string) *KeyStore {
	return &KeyStore{
		publicPath:  publicPath,
		privatePath: privatePath,
	}
}

// Load reads both halves of the key pair from disk.
func (s *KeyStore) Load() (*KeyPair, error) {
	public, err := LoadPublicKey(s.publicPath)
	if err != nil {
		return nil, err
	}

	private, err := LoadPrivateKey(s.privatePath)
	if err != nil {
		return nil, err
	}

	return &KeyPair{Public: public, Private: private}, nil
}

// LoadPublicKey reads a DER-encoded X.509 RSA public key from path.
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	der, err := os.ReadFile(path)
	if err != nil {
		return nil, &KeyLoadError{Path: path, Err: err}
	}

	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, &KeyLoadError{Path: path, Err: err}
	}

	public, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, &KeyLoadError{Path: path, Err: fmt.Errorf("not an RSA public key: %T", key)}
	}

	return public, nil
}

// LoadPrivateKey reads a DER-encoded PKCS#8 RSA private key from path.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	der, err := os.ReadFile(path)
	if err != nil {
		return nil, &KeyLoadError{Path: path, Err: err}
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, &KeyLoadError{Path: path, Err: err}
	}

	private, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, &KeyLoadError{Path: path, Err: fmt.Errorf("not an RSA private key: %T", key)}
	}

	return private, nil
}

// GenerateKeyPair generates a fresh 2048-bit RSA key pair from the
// cryptographically secure system source.
func GenerateKeyPair() (*KeyPair, error) {
	private, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, fmt.Errorf("could not generate RSA key pair: %w", err)
	}

	return &KeyPair{Public: &private.PublicKey, Private: private}, nil
}

// PersistPublicKey writes the X.509 encoding of key to path, creating parent
// directories as needed and overwriting any existing file.
func PersistPublicKey(path string, key *rsa.PublicKey) error {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return &KeyPersistError{Path: path, Err: err}
	}
	return writeKeyFile(path, der, 0o644)
}

// PersistPrivateKey writes the PKCS#8 encoding of key to path, creating
// parent directories as needed and overwriting any existing file. The file
// is only readable by the owner.
func PersistPrivateKey(path string, key *rsa.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return &KeyPersistError{Path: path, Err: err}
	}
	return writeKeyFile(path, der, 0o600)
}

// GenerateAndPersist generates a fresh key pair and writes both halves to
// the given paths. It is an administrative bootstrap operation and must not
// run concurrently with services verifying against the same files.
func GenerateAndPersist(publicPath, privatePath string) (*KeyPair, error) {
	pair, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	if err := PersistPublicKey(publicPath, pair.Public); err != nil {
		return nil, err
	}
	if err := PersistPrivateKey(privatePath, pair.Private); err != nil {
		return nil, err
	}

	return pair, nil
}

func writeKeyFile(path string, der []byte, perm os.FileMode) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &KeyPersistError{Path: path, Err: err}
		}
	}

	if err := os.WriteFile(path, der, perm); err != nil {
		return &KeyPersistError{Path: path, Err: err}
	}

	return nil
}
