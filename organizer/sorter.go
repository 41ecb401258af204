package organizer

import (
	"fmt"
	"sort"
	"time"

	"msgagent/models"
)

// ParseTimestamp reads the ISO 8601 variants seen in stored threads. Values
// without a zone are read as UTC. An empty string is the Unix epoch.
func ParseTimestamp(s string) (time.Time, error) {
	return models.ParseTimestamp(s)
}

// ThreadSorter orders threads by priority, recency and unread count.
type ThreadSorter struct{}

// NewThreadSorter returns a sorter.
func NewThreadSorter() *ThreadSorter {
	return &ThreadSorter{}
}

type sortKey struct {
	id       string
	priority models.Priority
	at       time.Time
	unread   int
}

// Sort returns thread ids ordered most urgent first. If any thread has an
// unparsable timestamp the input order is returned, degraded.
func (s *ThreadSorter) Sort(threads []models.ConversationThread) Decision[[]string] {
	original := ThreadIDs(threads)
	return guard(original, func() ([]string, error) {
		keys := make([]sortKey, len(threads))
		for i, t := range threads {
			at, err := ParseTimestamp(t.LastMessageAt)
			if err != nil {
				return nil, fmt.Errorf("thread %s: %w", original[i], err)
			}
			p := t.Priority
			if p == 0 {
				p = models.PriorityDefault
			}
			keys[i] = sortKey{id: original[i], priority: p, at: at, unread: t.UnreadCount}
		}

		sort.SliceStable(keys, func(i, j int) bool {
			a, b := keys[i], keys[j]
			if a.priority != b.priority {
				return a.priority < b.priority
			}
			if !a.at.Equal(b.at) {
				return a.at.After(b.at)
			}
			return a.unread > b.unread
		})

		ids := make([]string, len(keys))
		for i, k := range keys {
			ids[i] = k.id
		}
		return ids, nil
	})
}

// ThreadIDs lists thread ids in input order, naming anonymous threads
// thread_<index>.
func ThreadIDs(threads []models.ConversationThread) []string {
	ids := make([]string, len(threads))
	for i, t := range threads {
		if t.ID == "" {
			ids[i] = fmt.Sprintf("thread_%d", i)
			continue
		}
		ids[i] = t.ID
	}
	return ids
}
