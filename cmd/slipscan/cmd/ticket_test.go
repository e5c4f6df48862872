package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestTicketCommand_NoArgs(t *testing.T) {
	_, err := executeCommand(t, "ticket")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestTicketCommand_InvalidFormat(t *testing.T) {
	_, err := executeCommand(t, "ticket", "whatever.jpg", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestTicketCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "ticket", "/nonexistent/ticket.jpg", "--format", "json")
	require.Error(t, err)
}

func TestTicketCommand_Help(t *testing.T) {
	out, err := executeCommand(t, "ticket", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "betting ticket")
	assert.Contains(t, out, "--format")
}

func TestDocumentCommand_NoArgs(t *testing.T) {
	_, err := executeCommand(t, "document")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestDocumentCommand_Help(t *testing.T) {
	out, err := executeCommand(t, "document", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "identity document")
}

func TestTextCommand_NoArgs(t *testing.T) {
	_, err := executeCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestServeCommand_InvalidPort(t *testing.T) {
	_, err := executeCommand(t, "serve", "--port", "70000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestValidateOutputFormat(t *testing.T) {
	require.NoError(t, validateOutputFormat("text"))
	require.NoError(t, validateOutputFormat("json"))
	require.Error(t, validateOutputFormat("csv"))
}
