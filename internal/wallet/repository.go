package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Klingon-tech/klingsign/internal/log"
	"github.com/Klingon-tech/klingsign/internal/storage"
	"github.com/google/uuid"
)

// Key layout inside the wallet namespace.
var (
	walletNamespace = []byte("w/")
	metaPrefix      = []byte("m/")
	namePrefix      = []byte("n/")
)

// ErrDuplicateName is returned when saving a wallet under a taken name.
var ErrDuplicateName = errors.New("wallet name already in use")

// Repository persists wallets in a storage.DB.
type Repository struct {
	mu sync.Mutex
	db *storage.PrefixDB
}

// NewRepository returns a repository over db.
func NewRepository(db storage.DB) *Repository {
	return &Repository{db: storage.NewPrefixDB(db, walletNamespace)}
}

func metaKey(metaID string) []byte {
	return append(append([]byte{}, metaPrefix...), metaID...)
}

func nameKey(name string) []byte {
	return append(append([]byte{}, namePrefix...), name...)
}

// Save validates and stores m. A new wallet gets a fresh meta id, which
// is written back into m.
func (r *Repository) Save(m *MetaAccount) error {
	if m.Name == "" {
		return fmt.Errorf("wallet name is empty")
	}
	if err := m.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	owner, err := r.db.Get(nameKey(m.Name))
	switch {
	case err == nil:
		if string(owner) != m.MetaID {
			return fmt.Errorf("%w: %q", ErrDuplicateName, m.Name)
		}
	case !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("lookup wallet name: %w", err)
	}

	batch := r.db.NewBatch()
	if m.MetaID == "" {
		m.MetaID = uuid.NewString()
	} else if prev, err := r.fetch(m.MetaID); err == nil && prev.Name != m.Name {
		if err := batch.Delete(nameKey(prev.Name)); err != nil {
			return err
		}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := batch.Put(metaKey(m.MetaID), data); err != nil {
		return err
	}
	if err := batch.Put(nameKey(m.Name), []byte(m.MetaID)); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}
	log.Wallet.Debug().Str("meta_id", m.MetaID).Str("type", string(m.Type)).Msg("Wallet saved")
	return nil
}

// Delete removes the wallet with metaID.
func (r *Repository) Delete(metaID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.fetch(metaID)
	if err != nil {
		return err
	}
	batch := r.db.NewBatch()
	if err := batch.Delete(metaKey(metaID)); err != nil {
		return err
	}
	if err := batch.Delete(nameKey(m.Name)); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	log.Wallet.Debug().Str("meta_id", metaID).Msg("Wallet deleted")
	return nil
}

// FetchByID returns the wallet with metaID.
func (r *Repository) FetchByID(metaID string) (*MetaAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetch(metaID)
}

func (r *Repository) fetch(metaID string) (*MetaAccount, error) {
	data, err := r.db.Get(metaKey(metaID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, metaID)
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var m MetaAccount
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse wallet %s: %w", metaID, err)
	}
	return &m, nil
}

// FetchAll returns every wallet ordered by name, then meta id.
func (r *Repository) FetchAll() ([]*MetaAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*MetaAccount
	err := r.db.ForEach(metaPrefix, func(key, value []byte) error {
		var m MetaAccount
		if err := json.Unmarshal(value, &m); err != nil {
			return fmt.Errorf("parse wallet %s: %w", key[len(metaPrefix):], err)
		}
		all = append(all, &m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].MetaID < all[j].MetaID
	})
	return all, nil
}
