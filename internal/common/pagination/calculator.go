package pagination

// Metadata contains pagination metadata included in API responses.
type Metadata struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewMetadata computes Pages as ceil(total/limit), with a minimum of 1.
func NewMetadata(p Params, total int64) Metadata {
	return Metadata{
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
		Pages: CalculateTotalPages(total, p.Limit),
	}
}

// CalculateTotalPages returns ceil(total/limit), at least 1.
func CalculateTotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
