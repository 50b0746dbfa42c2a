package file

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/credentials"
	"github.com/crmarques/boxctl/faults"
)

const (
	envelopeVersion  = 1
	keyLengthBytes   = 32
	nonceLengthBytes = 12
	saltLengthBytes  = 16

	defaultKDFTime    = 1
	defaultKDFMemory  = 64 * 1024
	defaultKDFThreads = 4
)

var _ credentials.Store = (*TokenStore)(nil)

// TokenStore keeps the admin API token in an AES-GCM sealed file. Key material
// is either a raw 32-byte key or a passphrase stretched with argon2id.
type TokenStore struct {
	path       string
	key        []byte
	passphrase []byte
	kdf        kdfParams

	mu sync.Mutex
}

type kdfParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

type sealedEnvelope struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt,omitempty"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

type tokenRecord struct {
	Token string `json:"token"`
}

func NewTokenStore(cfg config.FileCredentialStore) (*TokenStore, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, validationError("credentials.file.path is required", nil)
	}

	sources := 0
	for _, value := range []string{cfg.Key, cfg.KeyFile, cfg.Passphrase, cfg.PassphraseFile} {
		if strings.TrimSpace(value) != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, validationError("credentials.file must define exactly one of key, key-file, passphrase, passphrase-file", nil)
	}

	kdf, err := kdfFromConfig(cfg.KDF)
	if err != nil {
		return nil, err
	}

	store := &TokenStore{path: filepath.Clean(path), kdf: kdf}

	switch {
	case strings.TrimSpace(cfg.Key) != "":
		store.key, err = decodeKey(cfg.Key)
	case strings.TrimSpace(cfg.KeyFile) != "":
		var raw []byte
		raw, err = os.ReadFile(strings.TrimSpace(cfg.KeyFile))
		if err != nil {
			return nil, validationError("credentials.file.key-file could not be read", err)
		}
		store.key, err = decodeKey(string(raw))
	case strings.TrimSpace(cfg.Passphrase) != "":
		store.passphrase = []byte(strings.TrimSpace(cfg.Passphrase))
	default:
		var raw []byte
		raw, err = os.ReadFile(strings.TrimSpace(cfg.PassphraseFile))
		if err != nil {
			return nil, validationError("credentials.file.passphrase-file could not be read", err)
		}
		passphrase := strings.TrimSpace(string(raw))
		if passphrase == "" {
			return nil, validationError("credentials.file.passphrase-file must not be empty", nil)
		}
		store.passphrase = []byte(passphrase)
	}
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Read reports absent when the file does not exist yet.
func (s *TokenStore) Read(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists, err := s.openLocked()
	if err != nil || !exists {
		return "", false, err
	}
	return record.Token, record.Token != "", nil
}

// Generate refuses to invent a token: BoxBilling only accepts the token stored
// in its admin table, so a locally generated one would never authenticate.
// Tokens enter this store through Put.
func (s *TokenStore) Generate(context.Context) error {
	return faults.NewTypedError(
		faults.CredentialError,
		"token file "+s.path+" holds no token: store the admin API token with `boxctl token set` or use the sql credential store",
		nil,
	)
}

// Put stores an explicit token, replacing any previous one.
func (s *TokenStore) Put(_ context.Context, token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return validationError("token must not be empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sealLocked(tokenRecord{Token: trimmed})
}

func (s *TokenStore) openLocked() (tokenRecord, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tokenRecord{}, false, nil
		}
		return tokenRecord{}, false, internalError("failed to read token file", err)
	}

	var envelope sealedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return tokenRecord{}, false, internalError("failed to decode token file", err)
	}
	if envelope.Version != envelopeVersion {
		return tokenRecord{}, false, validationError("token file format version is unsupported", nil)
	}

	nonce, err := base64.StdEncoding.DecodeString(envelope.Nonce)
	if err != nil {
		return tokenRecord{}, false, validationError("token file nonce is invalid", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Ciphertext)
	if err != nil {
		return tokenRecord{}, false, validationError("token file ciphertext is invalid", err)
	}
	var salt []byte
	if envelope.Salt != "" {
		if salt, err = base64.StdEncoding.DecodeString(envelope.Salt); err != nil {
			return tokenRecord{}, false, validationError("token file salt is invalid", err)
		}
	}

	gcm, err := s.cipherFor(salt)
	if err != nil {
		return tokenRecord{}, false, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return tokenRecord{}, false, authError("failed to decrypt token file with provided key material", err)
	}

	var record tokenRecord
	if err := json.Unmarshal(plaintext, &record); err != nil {
		return tokenRecord{}, false, internalError("failed to decode decrypted token file", err)
	}
	return record, true, nil
}

func (s *TokenStore) sealLocked(record tokenRecord) error {
	plaintext, err := json.Marshal(record)
	if err != nil {
		return internalError("failed to encode token record", err)
	}

	nonce, err := randomBytes(nonceLengthBytes)
	if err != nil {
		return internalError("failed to generate nonce", err)
	}
	var salt []byte
	if len(s.passphrase) > 0 {
		if salt, err = randomBytes(saltLengthBytes); err != nil {
			return internalError("failed to generate salt", err)
		}
	}

	gcm, err := s.cipherFor(salt)
	if err != nil {
		return err
	}

	envelope := sealedEnvelope{
		Version:    envelopeVersion,
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plaintext, nil)),
	}
	if len(salt) > 0 {
		envelope.Salt = base64.StdEncoding.EncodeToString(salt)
	}

	encoded, err := json.Marshal(envelope)
	if err != nil {
		return internalError("failed to encode token file", err)
	}
	return replaceFile(s.path, encoded, 0o600)
}

func (s *TokenStore) cipherFor(salt []byte) (cipher.AEAD, error) {
	key := s.key
	if len(key) == 0 {
		if len(salt) == 0 {
			return nil, validationError("token file salt is missing", nil)
		}
		key = argon2.IDKey(s.passphrase, salt, s.kdf.Time, s.kdf.Memory, s.kdf.Threads, keyLengthBytes)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, internalError("failed to initialize token cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, internalError("failed to initialize token cipher mode", err)
	}
	return gcm, nil
}

func kdfFromConfig(kdf *config.KDF) (kdfParams, error) {
	params := kdfParams{Time: defaultKDFTime, Memory: defaultKDFMemory, Threads: defaultKDFThreads}
	if kdf == nil {
		return params, nil
	}
	if kdf.Time < 0 || kdf.Memory < 0 || kdf.Threads < 0 || kdf.Threads > 255 {
		return kdfParams{}, validationError("credentials.file.kdf values are out of range", nil)
	}
	if kdf.Time > 0 {
		params.Time = uint32(kdf.Time)
	}
	if kdf.Memory > 0 {
		params.Memory = uint32(kdf.Memory)
	}
	if kdf.Threads > 0 {
		params.Threads = uint8(kdf.Threads)
	}
	return params, nil
}

// decodeKey accepts hex, padded or raw base64, or a literal 32-byte string.
func decodeKey(raw string) ([]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, validationError("credentials.file.key must not be empty", nil)
	}

	decoders := []func(string) ([]byte, error){
		hex.DecodeString,
		base64.StdEncoding.DecodeString,
		base64.RawStdEncoding.DecodeString,
	}
	for _, decode := range decoders {
		if decoded, err := decode(trimmed); err == nil && len(decoded) == keyLengthBytes {
			return decoded, nil
		}
	}
	if len(trimmed) == keyLengthBytes {
		return []byte(trimmed), nil
	}
	return nil, validationError("credentials.file.key must be 32-byte raw, base64, or hex", nil)
}

func randomBytes(length int) ([]byte, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

func replaceFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return internalError("failed to create token file directory", err)
	}

	tempFile, err := os.CreateTemp(dir, ".boxctl-token-*")
	if err != nil {
		return internalError("failed to create temporary token file", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() { _ = os.Remove(tempPath) }

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		cleanup()
		return internalError("failed to write temporary token file", err)
	}
	if err := tempFile.Chmod(mode); err != nil {
		_ = tempFile.Close()
		cleanup()
		return internalError("failed to set token file permissions", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return internalError("failed to close temporary token file", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return internalError("failed to replace token file", err)
	}
	return nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func authError(message string, cause error) error {
	return faults.NewTypedError(faults.AuthError, message, cause)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
