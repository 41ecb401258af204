package models

// PaginatedMessages represents a page of demo messages
type PaginatedMessages struct {
	Messages      []DemoMessage `json:"messages"`
	Page          int           `json:"page"`
	PageSize      int           `json:"page_size"`
	TotalPages    int           `json:"total_pages"`
	TotalMessages int           `json:"total_messages"`
	HasNext       bool          `json:"has_next"`
	HasPrev       bool          `json:"has_prev"`
}

// NewPaginatedMessages slices all into the requested page
func NewPaginatedMessages(all []DemoMessage, page, pageSize int) *PaginatedMessages {
	if pageSize <= 0 {
		pageSize = len(all)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	if page < 1 {
		page = 1
	}
	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &PaginatedMessages{
		Messages:      all[start:end],
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
		TotalMessages: total,
		HasNext:       page < totalPages,
		HasPrev:       page > 1,
	}
}
