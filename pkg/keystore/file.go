package keystore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"github.com/fystack/radixium/pkg/apperr"
	"github.com/fystack/radixium/pkg/logger"
)

// FileStore keeps one age-encrypted keystore file on disk, scrypt
// passphrase recipients, 0600 permissions.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return nil, fmt.Errorf("keystore: path traversal not allowed in %q", path)
	}
	return &FileStore{path: clean}, nil
}

func (s *FileStore) Load(password string) (*Keystore, error) {
	encrypted, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindLoadKeystore, fmt.Errorf("read %s: %w", s.path, err))
	}

	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindLoadKeystore, err)
	}
	reader, err := age.Decrypt(bytes.NewReader(encrypted), identity)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindLoadKeystore, fmt.Errorf("decrypt %s: %w", s.path, err))
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindLoadKeystore, err)
	}

	var keystore Keystore
	if err := json.Unmarshal(plaintext, &keystore); err != nil {
		return nil, apperr.Wrap(apperr.KindLoadKeystore, fmt.Errorf("parse keystore: %w", err))
	}
	logger.Debug("Keystore loaded", "path", s.path, "name", keystore.Name)
	return &keystore, nil
}

func (s *FileStore) Save(keystore *Keystore, password string) error {
	plaintext, err := json.Marshal(keystore)
	if err != nil {
		return fmt.Errorf("keystore: marshal: %w", err)
	}
	encrypted, err := encrypt(plaintext, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, encrypted, 0600); err != nil {
		return fmt.Errorf("keystore: write %s: %w", s.path, err)
	}
	logger.Info("Keystore saved", "path", s.path, "name", keystore.Name)
	return nil
}

func encrypt(plaintext []byte, password string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, fmt.Errorf("keystore: scrypt recipient: %w", err)
	}

	var buf bytes.Buffer
	writer, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("keystore: encrypt: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("keystore: encrypt write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("keystore: encrypt close: %w", err)
	}
	return buf.Bytes(), nil
}

var _ Store = (*FileStore)(nil)
