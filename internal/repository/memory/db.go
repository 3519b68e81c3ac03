// Package memory implements the repositories in process memory. It backs the
// server when no DATABASE_URL is configured and serves as the test store.
package memory

import (
	"context"
	"slices"
	"sync"

	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/repositories"
)

// DB holds every table. Repositories created from the same DB share state.
type DB struct {
	mu sync.Mutex

	chats     map[string]models.Chat
	messages  []models.Message
	nextMsgID int64
	favorites []models.Favorite
	nextFavID int64
	articles  map[string]models.Article
	qa        map[string][]models.QAPair

	// serializes ExecTx callers
	txMu sync.Mutex
}

// NewDB creates an empty in-memory database
func NewDB() *DB {
	return &DB{
		chats:    make(map[string]models.Chat),
		articles: make(map[string]models.Article),
		qa:       make(map[string][]models.QAPair),
	}
}

// txLog collects the inverse of every write made inside one transaction.
type txLog struct {
	undo []func()
}

type txKey struct{}

// record registers the inverse of a write. Callers hold db.mu. Outside a
// transaction it does nothing.
func (db *DB) record(ctx context.Context, undo func()) {
	if log, ok := ctx.Value(txKey{}).(*txLog); ok {
		log.undo = append(log.undo, undo)
	}
}

// rollback reverts the transaction's own writes, newest first. Rows written
// by other callers while the transaction was open are left alone. Ordinal
// counters are not rewound, matching database sequences.
func (db *DB) rollback(log *txLog) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i := len(log.undo) - 1; i >= 0; i-- {
		log.undo[i]()
	}
}

// removeMessage deletes the row with the given ordinal. Callers hold db.mu.
func (db *DB) removeMessage(id int64) {
	db.messages = slices.DeleteFunc(db.messages, func(m models.Message) bool {
		return m.ID == id
	})
}

// TransactionManager runs transactions one at a time. A failed transaction
// undoes only the writes it made.
type TransactionManager struct {
	db *DB
}

// NewTransactionManager creates a transaction manager over db
func NewTransactionManager(db *DB) repositories.TransactionManager {
	return &TransactionManager{db: db}
}

func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	// nested calls join the open transaction
	if _, ok := ctx.Value(txKey{}).(*txLog); ok {
		return fn(ctx)
	}

	tm.db.txMu.Lock()
	defer tm.db.txMu.Unlock()

	log := &txLog{}
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		tm.db.rollback(log)
		return err
	}
	return nil
}
