package sqlite

import (
	"database/sql"

	"github.com/phase1912/contacts-auth/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Users() store.UserRepo             { return &usersRepo{db: t.tx} }
func (t *txStore) Revocations() store.RevocationRepo { return &revocationsRepo{db: t.tx} }
