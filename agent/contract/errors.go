package contract

import "errors"

var (
	ErrValidation = errors.New("validation failed")

	ErrUnknownTool        = errors.New("unknown tool")
	ErrToolExecution      = errors.New("tool execution failed")
	ErrArgumentDecode     = errors.New("tool arguments could not be decoded")
	ErrPlannerTimeout     = errors.New("planner timed out")
	ErrPlannerBackend     = errors.New("planner backend failed")
	ErrPersistenceCorrupt = errors.New("persisted document is corrupt")
)
