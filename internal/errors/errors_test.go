package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOfThroughWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"app error", NewMalformedLogLineError("abc", 1), ErrMalformedLogLine},
		{"wrapped app error", fmt.Errorf("log line 3: %w", NewMalformedLogLineError("abc", 1)), ErrMalformedLogLine},
		{"command failed", NewCommandFailedError([]string{"log"}, 128, "fatal"), ErrCommandFailed},
		{"wrapped command failed", fmt.Errorf("read log: %w", NewCommandFailedError([]string{"log"}, 1, "")), ErrCommandFailed},
		{"plain error", stderrors.New("boom"), ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}

	assert.False(t, IsNotFound(nil))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := stderrors.New("strconv.Atoi: parsing \"x\": invalid syntax")
	err := NewParseFailure("revision count is not an integer", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "PARSE_FAILURE")
	assert.Contains(t, err.Error(), "caused by")
}

func TestCommandFailedErrorMessage(t *testing.T) {
	err := NewCommandFailedError([]string{"rev-list", "--count", "main"}, 128, "fatal: bad revision 'main'\n")
	assert.Equal(t, `command "rev-list --count main" exited with status 128: fatal: bad revision 'main'`, err.Error())

	err = NewCommandFailedError([]string{"log"}, 1, "")
	assert.Equal(t, `command "log" exited with status 1`, err.Error())
}

func TestFetchErrorUnwrapsFailures(t *testing.T) {
	err := NewFetchError(2, []CommitFailure{
		{Hash: "abc123", Err: NewUnparsableDiffStatError("Merge", nil)},
		{Hash: "def456", Err: NewCommandFailedError([]string{"show"}, 128, "")},
	})

	assert.Contains(t, err.Error(), "all 2 commits")
	assert.Contains(t, err.Error(), "abc123")
	assert.True(t, IsUnparsableDiffStat(err))

	var cmdErr *CommandFailedError
	assert.True(t, stderrors.As(err, &cmdErr))
}
