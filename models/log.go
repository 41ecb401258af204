package models

import "time"

// ToolResult records one decision tool invocation.
type ToolResult struct {
	ToolName      string         `json:"tool_name"`
	Input         map[string]any `json:"input"`
	Output        any            `json:"output"`
	ExecutionTime float64        `json:"execution_time"`
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
}

// ExecutionLog is a persisted record of one organize call.
type ExecutionLog struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	MessageText   string          `json:"message_text"`
	SenderID      string          `json:"sender_id"`
	PromptUsed    string          `json:"prompt_used"`
	Result        *OrganizeResult `json:"result,omitempty"`
	ToolCalls     []ToolResult    `json:"tool_calls"`
	ExecutionTime float64         `json:"execution_time"`
	Success       bool            `json:"success"`
	Error         string          `json:"error,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ExecutionStats aggregates execution logs over a window.
type ExecutionStats struct {
	TotalExecutions      int              `json:"total_executions"`
	SuccessfulExecutions int              `json:"successful_executions"`
	SuccessRate          float64          `json:"success_rate"`
	AvgExecutionTime     float64          `json:"avg_execution_time"`
	CategoryDistribution map[Category]int `json:"category_distribution"`
	PeriodDays           int              `json:"period_days"`
}

// ProcessingLog is a demo store history entry.
type ProcessingLog struct {
	ID            string          `json:"id"`
	MessageID     int             `json:"message_id"`
	MessageText   string          `json:"message_text"`
	SenderID      string          `json:"sender_id"`
	Result        *OrganizeResult `json:"result"`
	ExecutionTime float64         `json:"execution_time"`
	Timestamp     time.Time       `json:"timestamp"`
}

// DemoStats summarizes the demo store.
type DemoStats struct {
	TotalMessages        int              `json:"total_messages"`
	ProcessedMessages    int              `json:"processed_messages"`
	UnprocessedMessages  int              `json:"unprocessed_messages"`
	ProcessingRate       float64          `json:"processing_rate"`
	CategoryDistribution map[Category]int `json:"category_distribution"`
	AvgExecutionTime     float64          `json:"avg_execution_time"`
	TotalProcessingLogs  int              `json:"total_processing_logs"`
	TagCounts            map[string]int   `json:"tag_counts,omitempty"`
}
