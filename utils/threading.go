package utils

import (
	"fmt"
	"time"

	"msgagent/models"
)

// threadContainer collects the messages of one sender
type threadContainer struct {
	sender   string
	name     string
	messages []models.DemoMessage
}

// ThreadBuilder groups demo messages into one conversation thread per sender
type ThreadBuilder struct {
	index      map[string]*threadContainer
	containers []*threadContainer
}

// NewThreadBuilder creates a new thread builder
func NewThreadBuilder() *ThreadBuilder {
	return &ThreadBuilder{
		index: make(map[string]*threadContainer),
	}
}

// BuildThreads returns one thread per sender in order of first appearance.
// Messages without a sender each get their own thread with id thread_<i>,
// where i is the thread's position.
func (tb *ThreadBuilder) BuildThreads(messages []models.DemoMessage) []models.ConversationThread {
	for _, msg := range messages {
		container := tb.getContainer(msg)
		container.messages = append(container.messages, msg)
	}

	threads := make([]models.ConversationThread, 0, len(tb.containers))
	for i, container := range tb.containers {
		threads = append(threads, container.thread(i))
	}
	return threads
}

// getContainer retrieves or creates the container for a message's sender
func (tb *ThreadBuilder) getContainer(msg models.DemoMessage) *threadContainer {
	if msg.SenderID != "" {
		if container, ok := tb.index[msg.SenderID]; ok {
			return container
		}
	}

	container := &threadContainer{sender: msg.SenderID, name: msg.SenderName}
	tb.containers = append(tb.containers, container)
	if msg.SenderID != "" {
		tb.index[msg.SenderID] = container
	}
	return container
}

func (c *threadContainer) thread(position int) models.ConversationThread {
	id := c.sender
	if id == "" {
		id = fmt.Sprintf("thread_%d", position)
	}

	var (
		priority models.Priority
		newest   time.Time
		lastAt   string
		unread   int
	)
	for _, msg := range c.messages {
		if !msg.Processed || msg.ProcessingResult == nil {
			unread++
		} else if p := msg.ProcessingResult.Priority; priority == 0 || p < priority {
			priority = p
		}

		ts, err := models.ParseTimestamp(msg.Timestamp)
		if err != nil || msg.Timestamp == "" {
			if lastAt == "" {
				lastAt = msg.Timestamp
			}
			continue
		}
		if newest.IsZero() || ts.After(newest) {
			newest = ts
			lastAt = msg.Timestamp
		}
	}
	if priority == 0 {
		priority = models.PriorityDefault
	}

	name := c.name
	if name == "" {
		name = c.sender
	}
	return models.ConversationThread{
		ID:            id,
		Priority:      priority,
		LastMessageAt: lastAt,
		UnreadCount:   unread,
		Participant:   name,
		MessageCount:  len(c.messages),
	}
}
