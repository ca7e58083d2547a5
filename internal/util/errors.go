package util

import (
	"errors"
	"fmt"
)

// 错误分类，具体错误通过 %w 包装其中之一，用 errors.Is 判断
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrIntegrityFault = errors.New("integrity fault")
	ErrConflict       = errors.New("conflict")
)

var (
	ErrExamNotFound           = fmt.Errorf("%w: exam not found", ErrNotFound)
	ErrQuestionNotFound       = fmt.Errorf("%w: question not found", ErrNotFound)
	ErrAttemptNotFound        = fmt.Errorf("%w: attempt not found", ErrNotFound)
	ErrUserNotFound           = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrRecordedContentMissing = fmt.Errorf("%w: recorded question or variant no longer exists", ErrNotFound)

	ErrEmptySubmission  = fmt.Errorf("%w: no answers submitted", ErrInvalidInput)
	ErrForeignQuestion  = fmt.Errorf("%w: question does not belong to exam", ErrInvalidInput)
	ErrInvalidQuantity  = fmt.Errorf("%w: question quantity must be a positive number or \"all\"", ErrInvalidInput)
	ErrMalformedAnswer  = fmt.Errorf("%w: malformed answer", ErrInvalidInput)
	ErrInvalidExamFile  = fmt.Errorf("%w: invalid exam file", ErrInvalidInput)
	ErrInvalidExamTitle = fmt.Errorf("%w: exam title is required", ErrInvalidInput)

	ErrScoreAlreadyFinalized = fmt.Errorf("%w: attempt score already finalized", ErrIntegrityFault)
	ErrPartialWrite          = fmt.Errorf("%w: attempt records partially written", ErrIntegrityFault)

	ErrSubmissionInProgress = fmt.Errorf("%w: another submission is in progress", ErrConflict)
	ErrUsernameTaken        = fmt.Errorf("%w: username already registered", ErrConflict)

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
)
