package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/riptano/argus/internal/model"
)

const (
	boltBucketIssues = "issues" // key: connection/project/issuekey -> Issue JSON
	boltBucketMeta   = "meta"   // key: last_synced/connection/project -> RFC3339 timestamp
)

// Bolt is the bbolt-backed IssueStore. A single Update transaction per merge
// gives the all-or-nothing semantics MergeDiff requires.
type Bolt struct {
	storage *bbolt.DB
}

// NewBolt opens (or creates) the cache database at the given path.
func NewBolt(path string) (*Bolt, error) {
	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketIssues)); err != nil {
			return err
		}

		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketMeta)); err != nil {
			return err
		}

		return nil
	}); err != nil {
		_ = instance.Close()

		return nil, err
	}

	return &Bolt{storage: instance}, nil
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.storage.Close()
}

func (b *Bolt) Ping() error {
	return b.storage.View(func(tx *bbolt.Tx) error {
		return nil
	})
}

func issueKey(connection, project, key string) []byte {
	return []byte(connection + "/" + project + "/" + key)
}

func issuePrefix(connection, project string) []byte {
	return []byte(connection + "/" + project + "/")
}

func metaKey(connection, project string) []byte {
	return []byte("last_synced/" + connection + "/" + project)
}

func (b *Bolt) MergeDiff(connection, project string, updated []model.Issue, removed []string, syncedAt time.Time) (*MergeResult, error) {
	result := &MergeResult{}

	err := b.storage.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketIssues))

		for i := range updated {
			incoming := &updated[i]

			// the store owns one key namespace per project; a stray
			// issue aborts the whole merge rather than polluting it
			if incoming.Project != project {
				return fmt.Errorf("issue %s belongs to project %s, not %s", incoming.Key, incoming.Project, project)
			}
			if !strings.HasPrefix(incoming.Key, project+"-") {
				return fmt.Errorf("issue key %s outside project %s namespace", incoming.Key, project)
			}

			k := issueKey(connection, project, incoming.Key)

			if existing := bucket.Get(k); existing != nil {
				var cached model.Issue
				if err := json.Unmarshal(existing, &cached); err != nil {
					return fmt.Errorf("corrupt cache entry %s: %w", k, err)
				}
				// last write wins by remote timestamp
				if incoming.Updated.Before(cached.Updated) {
					continue
				}
			}

			data, err := json.Marshal(incoming)
			if err != nil {
				return err
			}
			if err := bucket.Put(k, data); err != nil {
				return err
			}
			result.UpdatedKeys = append(result.UpdatedKeys, incoming.Key)
		}

		// the remote said these dropped out of scope: retain but mark
		// stale so no data is lost to a narrower incremental query
		for _, key := range removed {
			k := issueKey(connection, project, key)
			existing := bucket.Get(k)
			if existing == nil {
				continue
			}

			var cached model.Issue
			if err := json.Unmarshal(existing, &cached); err != nil {
				return fmt.Errorf("corrupt cache entry %s: %w", k, err)
			}
			if !cached.Stale {
				cached.Stale = true
				data, err := json.Marshal(&cached)
				if err != nil {
					return err
				}
				if err := bucket.Put(k, data); err != nil {
					return err
				}
			}
			result.RemovedKeys = append(result.RemovedKeys, key)
		}

		meta := tx.Bucket([]byte(boltBucketMeta))
		mk := metaKey(connection, project)
		if existing := meta.Get(mk); existing != nil {
			prev, err := time.Parse(time.RFC3339, string(existing))
			if err == nil && syncedAt.Before(prev) {
				// timestamp is monotonically non-decreasing
				return nil
			}
		}
		return meta.Put(mk, []byte(syncedAt.UTC().Format(time.RFC3339)))
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(result.UpdatedKeys)
	sort.Strings(result.RemovedKeys)
	return result, nil
}

func (b *Bolt) Issues(connection, project string) ([]model.Issue, error) {
	var issues []model.Issue

	err := b.storage.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(boltBucketIssues)).Cursor()
		prefix := issuePrefix(connection, project)

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var issue model.Issue
			if err := json.Unmarshal(v, &issue); err != nil {
				return fmt.Errorf("corrupt cache entry %s: %w", k, err)
			}
			issues = append(issues, issue)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// cursor order is byte order of keys, already ascending
	return issues, nil
}

func (b *Bolt) Issue(connection, project, key string) (*model.Issue, error) {
	var issue *model.Issue

	err := b.storage.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(boltBucketIssues)).Get(issueKey(connection, project, key))
		if v == nil {
			return nil
		}

		issue = &model.Issue{}
		if err := json.Unmarshal(v, issue); err != nil {
			return fmt.Errorf("corrupt cache entry %s/%s/%s: %w", connection, project, key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issue, nil
}

func (b *Bolt) LastSynced(connection, project string) (time.Time, error) {
	var synced time.Time

	err := b.storage.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(boltBucketMeta)).Get(metaKey(connection, project))
		if v == nil {
			return nil
		}

		parsed, err := time.Parse(time.RFC3339, string(v))
		if err != nil {
			return fmt.Errorf("corrupt last_synced for %s/%s: %w", connection, project, err)
		}
		synced = parsed
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return synced, nil
}

func (b *Bolt) Projects(connection string) ([]string, error) {
	seen := make(map[string]bool)

	err := b.storage.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(boltBucketIssues)).Cursor()
		prefix := []byte(connection + "/")

		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			rest := string(k[len(prefix):])
			if idx := strings.IndexByte(rest, '/'); idx > 0 {
				seen[rest[:idx]] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	projects := make([]string, 0, len(seen))
	for p := range seen {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	return projects, nil
}

func (b *Bolt) DeleteProject(connection, project string) error {
	return b.storage.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketIssues))
		c := bucket.Cursor()
		prefix := issuePrefix(connection, project)

		var keys [][]byte
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}

		return tx.Bucket([]byte(boltBucketMeta)).Delete(metaKey(connection, project))
	})
}
