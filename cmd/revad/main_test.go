package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "revad "+version+"\n", out)
}

func TestCheck_AllPass(t *testing.T) {
	out, err := run(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "EXPRESSION")
	assert.Contains(t, out, "normal_log_density")
	assert.NotContains(t, out, "FAIL")
}

func TestCheck_Filter(t *testing.T) {
	out, err := run(t, "check", "--filter", "log_sum_exp")
	require.NoError(t, err)
	assert.Contains(t, out, "log_sum_exp/vv")
	assert.NotContains(t, out, "sqrt")
}

func TestCheck_ImpossibleTolerance(t *testing.T) {
	_, err := run(t, "check", "--filter", "tgamma", "--tol", "0")
	require.Error(t, err)
	assert.True(t, isMismatch(err))
}

func TestBench_Sequential(t *testing.T) {
	out, err := run(t, "bench", "-n", "20", "--dim", "3", "--metrics")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`iterations=20 dim=3 parallel=false`), out)
	assert.Contains(t, out, "revad_recoveries_total")
	assert.Contains(t, out, `name="bench"`)
}

func TestBench_ParallelRecordsWorkerStacks(t *testing.T) {
	out, err := run(t, "bench", "-n", "20", "--dim", "3", "--parallel", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "revad_recoveries_total")
	assert.Contains(t, out, "revad_arena_bytes")
	assert.Contains(t, out, `name="bench"`)
	assert.Contains(t, out, `operation="batch_gradient"`)
}

func TestBench_ServesMetrics(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"bench", "-n", "5", "--dim", "2", "--listen", addr})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, string(body), "revad_tape_nodes")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("bench did not stop after cancellation")
	}
}

func TestBench_ParallelMatchesSequential(t *testing.T) {
	checksum := regexp.MustCompile(`checksum=(\S+)`)

	seq, err := run(t, "bench", "-n", "30", "--dim", "4", "--seed", "7")
	require.NoError(t, err)
	par, err := run(t, "bench", "-n", "30", "--dim", "4", "--seed", "7", "--parallel")
	require.NoError(t, err)

	assert.Contains(t, par, "parallel=true")
	assert.Equal(t, checksum.FindStringSubmatch(seq)[1], checksum.FindStringSubmatch(par)[1])
}

func TestBench_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bench:\n  iterations: 5\n  dim: 2\n"), 0o600))

	out, err := run(t, "--config", path, "bench")
	require.NoError(t, err)
	assert.Contains(t, out, "iterations=5 dim=2")
}

func TestBench_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o600))

	_, err := run(t, "--config", path, "bench")
	require.Error(t, err)
}
