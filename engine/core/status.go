package core

// Status identifies the terminal outcome of one healing run.
type Status string

const (
	// StatusStructureOK means the manifest validated on the first pass.
	StatusStructureOK Status = "STRUCTURE_OK"
	// StatusStructureFixed1..3 mean the manifest validated after n repair attempts.
	StatusStructureFixed1 Status = "STRUCTURE_FIXED_1"
	StatusStructureFixed2 Status = "STRUCTURE_FIXED_2"
	StatusStructureFixed3 Status = "STRUCTURE_FIXED_3"
	// StatusMultiDocHandled means a multi-document input was split, healed
	// per fragment and rejoined.
	StatusMultiDocHandled Status = "MULTI_DOC_HANDLED"
	// StatusProtectedSkip means the targeted fix line is a protected
	// structure (anchor, directive, boundary, block-scalar header) and
	// repair was aborted to keep it intact.
	StatusProtectedSkip Status = "STRUCTURE_PROTECTED_SKIP"
	// StatusStructureFail means the attempt budget was exhausted; the
	// returned content is the best-effort rewrite.
	StatusStructureFail Status = "STRUCTURE_FAIL"

	// Input guard statuses. These reject the document before repair runs.
	StatusMissingInput  Status = "MISSING_INPUT"
	StatusFileReadError Status = "FILE_READ_ERROR"
	StatusFileTooLarge  Status = "FILE_TOO_LARGE"
	StatusEmptyInput    Status = "EMPTY_INPUT"

	// StatusPipelineError reports an internal fault caught at the
	// orchestrator boundary.
	StatusPipelineError Status = "PIPELINE_ERROR"
)

// IsSuccess reports whether the status counts as a full structural success:
// the final content parses with a standards-compliant YAML engine.
func (s Status) IsSuccess() bool {
	switch s {
	case StatusStructureOK,
		StatusStructureFixed1,
		StatusStructureFixed2,
		StatusStructureFixed3,
		StatusMultiDocHandled:
		return true
	}
	return false
}

// FixedStatus maps a successful repair attempt index (1-based) to its status.
func FixedStatus(attempt int) Status {
	switch attempt {
	case 1:
		return StatusStructureFixed1
	case 2:
		return StatusStructureFixed2
	default:
		return StatusStructureFixed3
	}
}

func (s Status) String() string {
	return string(s)
}
