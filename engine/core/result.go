package core

// LineChange records a single line rewritten during healing.
type LineChange struct {
	// Line is 1-based, matching editor and parser conventions.
	Line           int    `json:"line"`
	Original       string `json:"original"`
	Fixed          string `json:"fixed"`
	IndentOriginal int    `json:"indent_original"`
	IndentFixed    int    `json:"indent_fixed"`
}

// Report summarizes what healing changed. It is built once, after the final
// content is known, and never mutated afterwards.
type Report struct {
	TotalLines   int          `json:"total_lines"`
	LinesChanged int          `json:"lines_changed"`
	Changes      []LineChange `json:"changes"`
	Error        string       `json:"error,omitempty"`
	FilePath     string       `json:"file_path,omitempty"`
}

// Result is the pipeline's output envelope.
//
// Success and PartialHeal are mutually exclusive: Success means the final
// content is fully parseable, PartialHeal means repair improved the document
// but it still fails validation.
type Result struct {
	Content        string `json:"content"`
	Status         Status `json:"status"`
	Report         Report `json:"report"`
	Success        bool   `json:"success"`
	PartialHeal    bool   `json:"partial_heal"`
	Phase1Complete bool   `json:"phase1_complete"`
	InputType      string `json:"input_type,omitempty"`
	InputSizeBytes int    `json:"input_size_bytes"`

	// Fields attached by the audit engine when healing files on disk.
	FilePath      string `json:"file_path,omitempty"`
	FileSizeBytes int64  `json:"file_size_bytes,omitempty"`
	BackupCreated string `json:"backup_created,omitempty"`
	BackupWarning string `json:"backup_warning,omitempty"`
	Written       bool   `json:"written,omitempty"`
	WriteError    string `json:"write_error,omitempty"`
}

// Summary aggregates a batch of results.
type Summary struct {
	SuccessRate float64 `json:"success_rate"`
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Partial     int     `json:"partial_heal"`
	Failed      int     `json:"failed"`
}
