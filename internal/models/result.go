package models

// ResultType enumerates importer outcomes.
type ResultType int

const (
	ResultOK ResultType = iota
	ResultError
)

func (t ResultType) String() string {
	switch t {
	case ResultOK:
		return "OK"
	case ResultError:
		return "ERROR"
	default:
		return ""
	}
}

// ImportResult is returned once per importer invocation.
type ImportResult struct {
	Type  ResultType
	Cause error
}

// ImportOK is the result of a successful (or empty) import.
var ImportOK = ImportResult{Type: ResultOK}

// NewImportError returns a failed result carrying cause.
func NewImportError(cause error) ImportResult {
	return ImportResult{Type: ResultError, Cause: cause}
}

func (r ImportResult) OK() bool { return r.Type == ResultOK }

// Err returns the cause of a failed result, or nil.
func (r ImportResult) Err() error {
	if r.OK() {
		return nil
	}
	return r.Cause
}
