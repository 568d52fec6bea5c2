package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"expenses/internal/core"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(MessageResult{Message: "done"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(CodeValidation, "invalid amount", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeValidation, resp.Error.Code)
	assert.Equal(t, "invalid amount", resp.Error.Message)
}

func TestOutputFormatter_YAMLError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "yaml", Writer: buf}

	require.NoError(t, formatter.Error(CodeStorage, "disk full", nil))

	var resp CLIResponse
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeStorage, resp.Error.Code)
}

func TestOutputFormatter_TextFallsBackToPrintln(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("plain"))
	assert.Equal(t, "plain\n", buf.String())
}

func TestOutputFormatter_TextErrorDetailsGoToErrWriter(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: out, ErrWriter: diag, Verbose: true}

	require.NoError(t, formatter.Error(CodeStorage, "list failed", "database is locked"))
	assert.Equal(t, "Warning: list failed\n", out.String())
	assert.Equal(t, "Details: database is locked\n", diag.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	formatter.VerboseLog("hidden %d", 1)
	assert.Empty(t, buf.String())

	formatter.Verbose = true
	formatter.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", buf.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(&ExitError{Code: ExitFailure, Message: "bad data"}))
	assert.Equal(t, ExitCommandError, GetExitCode(errors.New("unknown flag")))

	wrapped := WrapExitError(ExitFailure, "add", core.ErrZeroAmount)
	assert.ErrorIs(t, wrapped, core.ErrZeroAmount)
	assert.Equal(t, "add: amount cannot be zero", wrapped.Error())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
		wantMsg  string
	}{
		{"missing field", &core.ValidationError{Field: "name", Err: core.ErrEmptyName}, CodeValidation, ExitFailure, "All fields are required."},
		{"bad amount", &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}, CodeValidation, ExitFailure, "invalid amount: invalid amount"},
		{"malformed date", &core.MalformedDateError{ID: 3, Date: "x"}, CodeMalformedDate, ExitFailure, `expense #3 has malformed date "x" (want YYYY-MM-DD)`},
		{"usage", newUsageError("invalid expense id %q", "x"), CodeUsage, ExitCommandError, `invalid expense id "x"`},
		{"storage", errors.New("list expenses: disk I/O error"), CodeStorage, ExitFailure, "list expenses: disk I/O error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit, msg := classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExit, exit)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
