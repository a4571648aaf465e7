package ocr

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerMissingTool(t *testing.T) {
	_, _, err := ExecRunner{}.Run(context.Background(), "promptgen-no-such-tool", "-v")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolMissing)
	assert.ErrorContains(t, err, "promptgen-no-such-tool")
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	out, errb, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "echo step one; echo warn >&2")
	require.NoError(t, err)
	assert.Equal(t, "step one\n", string(out))
	assert.Equal(t, "warn\n", string(errb))

	_, errb, err = ExecRunner{}.Run(context.Background(), "sh", "-c", "echo bad page >&2; exit 3")
	var ee *exec.ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.ExitCode())
	assert.Equal(t, "bad page\n", string(errb))
}

func TestExecRunnerCanceled(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ExecRunner{}.Run(ctx, "sh", "-c", "sleep 5")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("x", 20)
	assert.Equal(t, strings.Repeat("x", 10)+"...(truncated)", truncate(long, 10))
}
