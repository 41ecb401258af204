package storage

import (
	"github.com/google/uuid"

	"msgagent/models"
)

// AppendLog records one processing run. ID and Timestamp are filled in.
func (s *DemoStore) AppendLog(entry models.ProcessingLog) (models.ProcessingLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc historyDoc
	if err := s.load(historyFile, &doc); err != nil {
		return entry, err
	}
	entry.ID = uuid.New().String()
	entry.Timestamp = s.now()
	doc.Logs = append(doc.Logs, entry)
	return entry, s.save(historyFile, doc)
}

// Logs returns the processing history, oldest first
func (s *DemoStore) Logs() ([]models.ProcessingLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc historyDoc
	if err := s.load(historyFile, &doc); err != nil {
		return nil, err
	}
	if doc.Logs == nil {
		doc.Logs = []models.ProcessingLog{}
	}
	return doc.Logs, nil
}

// Stats summarizes messages and processing history
func (s *DemoStore) Stats() (*models.DemoStats, error) {
	messages, err := s.Messages()
	if err != nil {
		return nil, err
	}
	logs, err := s.Logs()
	if err != nil {
		return nil, err
	}

	stats := &models.DemoStats{
		TotalMessages:        len(messages),
		CategoryDistribution: map[models.Category]int{},
		TotalProcessingLogs:  len(logs),
	}
	for _, m := range messages {
		if m.Processed {
			stats.ProcessedMessages++
		}
	}
	stats.UnprocessedMessages = stats.TotalMessages - stats.ProcessedMessages
	if stats.TotalMessages > 0 {
		stats.ProcessingRate = float64(stats.ProcessedMessages) / float64(stats.TotalMessages)
	}

	var total float64
	for _, l := range logs {
		total += l.ExecutionTime
		if l.Result != nil {
			stats.CategoryDistribution[l.Result.Category]++
		}
	}
	if len(logs) > 0 {
		stats.AvgExecutionTime = total / float64(len(logs))
	}
	return stats, nil
}
