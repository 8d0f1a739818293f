package core

// error_messages.go maps pipeline errors to short operator-facing messages
// with codes that can be quoted in bug reports.
//
// Codes are grouped by category:
//
//	SRC001 - Source unavailable: export query failed or database unreachable
//	SRC002 - Connection refused: database host refused the connection
//	DEC001 - Decode failure: a payload is not valid hex, gzip or UTF-8
//	EXT001 - Extraction failure: document markup could not be processed
//	FILE001 - Invalid raw table: wrong column count or non-integer id
//	FILE002 - Missing file: input file does not exist
//	RES001 - Torn output: last output row is incomplete
//	LCK001 - Output locked: another run is writing the same output
//	RUN001 - Cancelled: run interrupted by signal
//	RUN002 - Timed out: run or query deadline exceeded
//	ERR000 - Unknown error
//
// Typed errors are matched with errors.As first. Anything else falls back to
// case-insensitive substring patterns; the first match wins.

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// UserMessage provides operator-facing error information with guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgSourceUnavailable = UserMessage{
		Message: "Source database query failed",
		Action:  "Check DATABASE_URL and database availability, then re-run the dump",
		Code:    "SRC001",
	}
	msgDecode = UserMessage{
		Message: "A content payload could not be decoded",
		Action:  "Inspect the reported row in the raw dump; re-run with --restart after fixing it",
		Code:    "DEC001",
	}
	msgExtraction = UserMessage{
		Message: "Paragraph extraction failed for a document",
		Action:  "Inspect the reported row in the raw dump; re-run with --restart after fixing it",
		Code:    "EXT001",
	}
	msgDataFormat = UserMessage{
		Message: "Raw table is not in the expected format",
		Action:  "Re-create the raw dump; it may be truncated or from a different query",
		Code:    "FILE001",
	}
	msgResume = UserMessage{
		Message: "Output file ends with an incomplete row",
		Action:  "Remove the partial last line or re-run without --restart",
		Code:    "RES001",
	}
	msgLocked = UserMessage{
		Message: "Output is being written by another run",
		Action:  "Wait for the other run to finish or remove a stale .lock file",
		Code:    "LCK001",
	}
)

// errorPattern defines a pattern to match and its corresponding message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps untyped error text (case-insensitive) to messages.
// More specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "SRC002",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "Input file does not exist",
			Action:  "Run the matching dump command first or check --in",
			Code:    "FILE002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Run was cancelled",
			Action:  "Re-run with --restart to continue from the last written chunk",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Run timed out",
			Action:  "Raise the timeout or re-run with --restart",
			Code:    "RUN002",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the underlying error",
	Code:    "ERR000",
}

// MapError converts a pipeline error to an operator-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		srcErr    *SourceUnavailableError
		decErr    *DecodeError
		extErr    *ExtractionError
		formatErr *DataFormatError
		resumeErr *ResumeInconsistencyError
	)
	switch {
	case errors.As(err, &decErr):
		return msgDecode
	case errors.As(err, &extErr):
		return msgExtraction
	case errors.As(err, &formatErr):
		return msgDataFormat
	case errors.As(err, &resumeErr):
		return msgResume
	case errors.Is(err, ErrOutputLocked):
		return msgLocked
	case errors.Is(err, fs.ErrNotExist):
		return errorPatterns[1].msg
	case errors.As(err, &srcErr):
		// Connection refusals get the more specific message.
		if strings.Contains(strings.ToLower(err.Error()), "connection refused") {
			return errorPatterns[0].msg
		}
		return msgSourceUnavailable
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
