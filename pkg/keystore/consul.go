package keystore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"filippo.io/age"
	"github.com/fystack/radixium/pkg/apperr"
	"github.com/hashicorp/consul/api"
)

// ConsulKV is the slice of the Consul KV API the store uses.
type ConsulKV interface {
	Put(kv *api.KVPair, options *api.WriteOptions) (*api.WriteMeta, error)
	Get(key string, options *api.QueryOptions) (*api.KVPair, *api.QueryMeta, error)
}

// ConsulStore keeps the age-encrypted keystore in Consul KV, for
// deployments where the wallet host is ephemeral but a Consul cluster is
// already around.
type ConsulStore struct {
	kv   ConsulKV
	name string
}

func NewConsulStore(kv ConsulKV, name string) *ConsulStore {
	return &ConsulStore{kv: kv, name: name}
}

func (s *ConsulStore) composeKey() string {
	return fmt.Sprintf("radixium/keystore/%s", s.name)
}

func (s *ConsulStore) Load(password string) (*Keystore, error) {
	pair, _, err := s.kv.Get(s.composeKey(), nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindLoadKeystore, fmt.Errorf("consul get: %w", err))
	}
	if pair == nil {
		return nil, apperr.Errorf(apperr.KindLoadKeystore, "keystore %s not found", s.composeKey())
	}

	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindLoadKeystore, err)
	}
	reader, err := age.Decrypt(bytes.NewReader(pair.Value), identity)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindLoadKeystore, fmt.Errorf("decrypt: %w", err))
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindLoadKeystore, err)
	}

	var keystore Keystore
	if err := json.Unmarshal(plaintext, &keystore); err != nil {
		return nil, apperr.Wrap(apperr.KindLoadKeystore, fmt.Errorf("parse keystore: %w", err))
	}
	return &keystore, nil
}

func (s *ConsulStore) Save(keystore *Keystore, password string) error {
	plaintext, err := json.Marshal(keystore)
	if err != nil {
		return fmt.Errorf("keystore: marshal: %w", err)
	}
	encrypted, err := encrypt(plaintext, password)
	if err != nil {
		return err
	}

	pair := &api.KVPair{Key: s.composeKey(), Value: encrypted}
	if _, err := s.kv.Put(pair, nil); err != nil {
		return fmt.Errorf("keystore: consul put: %w", err)
	}
	return nil
}

var _ Store = (*ConsulStore)(nil)
