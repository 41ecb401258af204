package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const (
	tagBucket     = "tags"
	messageBucket = "message_tags"
)

// TagIndex maps tags to demo message ids using BoltDB. Keys are
// "tag\x00id" in the tags bucket and "id\x00tag" in message_tags, so both
// directions are prefix scans.
type TagIndex struct {
	db *bbolt.DB
}

// OpenTagIndex opens (or creates) tags.db under dataDir
func OpenTagIndex(dataDir string) (*TagIndex, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dataDir, "tags.db"), 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open tag index: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{tagBucket, messageBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &TagIndex{db: db}, nil
}

// Close closes the database
func (t *TagIndex) Close() error {
	return t.db.Close()
}

func idBytes(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func pairKey(prefix, suffix []byte) []byte {
	k := make([]byte, 0, len(prefix)+1+len(suffix))
	k = append(k, prefix...)
	k = append(k, 0)
	return append(k, suffix...)
}

// SetTags replaces the tags recorded for a message
func (t *TagIndex) SetTags(messageID int, tags []string) error {
	id := idBytes(messageID)
	return t.db.Update(func(tx *bbolt.Tx) error {
		byTag := tx.Bucket([]byte(tagBucket))
		byMsg := tx.Bucket([]byte(messageBucket))

		prefix := pairKey(id, nil)
		var stale [][]byte
		c := byMsg.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			stale = append(stale, append([]byte(nil), k...))
		}
		for _, k := range stale {
			tag := k[len(prefix):]
			if err := byMsg.Delete(k); err != nil {
				return err
			}
			if err := byTag.Delete(pairKey(tag, id)); err != nil {
				return err
			}
		}

		for _, tag := range tags {
			if tag == "" {
				continue
			}
			if err := byMsg.Put(pairKey(id, []byte(tag)), []byte{}); err != nil {
				return err
			}
			if err := byTag.Put(pairKey([]byte(tag), id), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
}

// MessagesWithTag returns the ids of messages carrying tag, ascending
func (t *TagIndex) MessagesWithTag(tag string) ([]int, error) {
	ids := []int{}
	prefix := pairKey([]byte(tag), nil)
	err := t.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(tagBucket)).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			ids = append(ids, int(binary.BigEndian.Uint64(k[len(prefix):])))
		}
		return nil
	})
	return ids, err
}

// TagsFor returns a message's tags in key order
func (t *TagIndex) TagsFor(messageID int) ([]string, error) {
	tags := []string{}
	prefix := pairKey(idBytes(messageID), nil)
	err := t.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(messageBucket)).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			tags = append(tags, string(k[len(prefix):]))
		}
		return nil
	})
	return tags, err
}

// Counts returns how many messages carry each tag
func (t *TagIndex) Counts() (map[string]int, error) {
	counts := map[string]int{}
	err := t.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(tagBucket)).ForEach(func(k, _ []byte) error {
			if i := bytes.IndexByte(k, 0); i >= 0 {
				counts[string(k[:i])]++
			}
			return nil
		})
	})
	return counts, err
}

// Tags returns every indexed tag, sorted
func (t *TagIndex) Tags() ([]string, error) {
	counts, err := t.Counts()
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}
