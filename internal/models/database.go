package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store holding the update journal
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Journal operations

// CreateJournalEntry creates a new update journal entry
func (db *Database) CreateJournalEntry(entry *UpdateJournalEntry) error {
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), entry)
}

// UpdateJournalEntry updates an existing journal entry
func (db *Database) UpdateJournalEntry(entry *UpdateJournalEntry) error {
	entry.UpdatedAt = time.Now()
	return db.store.Update(entry.ID, entry)
}

// GetJournalEntry retrieves a journal entry by ID
func (db *Database) GetJournalEntry(id uint64) (*UpdateJournalEntry, error) {
	var entry UpdateJournalEntry
	err := db.store.Get(id, &entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetUnresolvedEntries retrieves entries whose create half still has to run
func (db *Database) GetUnresolvedEntries() ([]*UpdateJournalEntry, error) {
	var entries []*UpdateJournalEntry
	err := db.store.Find(&entries,
		bolthold.Where("Phase").Eq(UpdatePhaseDeleted).
			Or(bolthold.Where("Phase").Eq(UpdatePhaseFailed)))
	return entries, err
}

// GetEntriesByItemID retrieves all journal entries for a media item
func (db *Database) GetEntriesByItemID(itemID string) ([]*UpdateJournalEntry, error) {
	var entries []*UpdateJournalEntry
	err := db.store.Find(&entries, bolthold.Where("ItemID").Eq(itemID))
	return entries, err
}

// GetAllEntries retrieves all journal entries
func (db *Database) GetAllEntries() ([]*UpdateJournalEntry, error) {
	var entries []*UpdateJournalEntry
	err := db.store.Find(&entries, nil)
	return entries, err
}

// DeleteJournalEntry deletes a journal entry by ID
func (db *Database) DeleteJournalEntry(id uint64) error {
	return db.store.Delete(id, &UpdateJournalEntry{})
}

// PruneResolvedEntries deletes entries that completed before cutoff
func (db *Database) PruneResolvedEntries(cutoff time.Time) (int, error) {
	var entries []*UpdateJournalEntry
	err := db.store.Find(&entries,
		bolthold.Where("Phase").Eq(UpdatePhaseRecreated).
			And("UpdatedAt").Lt(cutoff))
	if err != nil {
		return 0, err
	}

	for _, entry := range entries {
		if err := db.store.Delete(entry.ID, &UpdateJournalEntry{}); err != nil {
			return 0, err
		}
	}

	return len(entries), nil
}
