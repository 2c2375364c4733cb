package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwtly10/kid-relay/internal/relay"
)

func TestRoutesCommand(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"routes", "--no-color"})

	require.NoError(t, root.Execute())

	got := out.String()
	for _, op := range relay.Operations() {
		assert.Contains(t, got, op.Path)
	}
	assert.Contains(t, got, "jurisdiction* dateOfBirth age")
	assert.Contains(t, got, "sessionId* kuid etag")
	assert.Contains(t, got, "<json body>")
	// header, one line per operation, legend
	assert.Len(t, strings.Split(strings.TrimSpace(got), "\n"), len(relay.Operations())+2)
}

func TestServeFailsWithoutCredential(t *testing.T) {
	t.Setenv("KID_KEY", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("PORT", "")

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"serve"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KID_KEY")
}

func TestServeRejectsMissingEnvFile(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--env-file", t.TempDir() + "/missing.env"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load env file")
}
