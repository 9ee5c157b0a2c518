package cmd

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inovacc/labctl/internal/config"
	"github.com/inovacc/labctl/internal/testnet"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backendHost = "10.0.0.5:5000"

func startBackend(t *testing.T) *testnet.Network {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/equipment", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"equipment":[{"id":1,"name":"Centrifuge","status":"` + r.URL.Query().Get("status") + `"}]}`))
	})
	mux.HandleFunc("GET /api/equipment/1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"equipment":{"id":1,"equipment_image":"uploads/equipment/c.jpg"}}`))
	})
	mux.HandleFunc("DELETE /api/equipment/1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"Equipment deleted"}`))
	})

	network := testnet.New()
	network.Handle(backendHost, testnet.Health(mux, "10.0.0.5"))

	prev := httpClient
	httpClient = network.Client()

	t.Cleanup(func() { httpClient = prev })

	return network
}

// resetFlags returns every flag in the command tree to its default, so each
// in-process run parses its arguments onto a clean tree.
func resetFlags(t *testing.T, c *cobra.Command) {
	t.Helper()

	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			var def []string
			if v := strings.Trim(f.DefValue, "[]"); v != "" {
				def = strings.Split(v, ",")
			}

			require.NoError(t, sv.Replace(def))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}

		f.Changed = false
	}

	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)

	for _, sub := range c.Commands() {
		resetFlags(t, sub)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()

	t.Setenv("LABCTL_HOME", dir)

	for _, env := range []string{config.EnvMode, config.EnvAPIURL, config.EnvPort, config.EnvHostURI, config.EnvStorage} {
		t.Setenv(env, "")
	}

	global := []string{
		"--config", filepath.Join(dir, "config.ini"),
		"--mode", "development",
		"--host-uri", "10.0.0.5:19000",
		"--storage", "file",
		"--storage-path", filepath.Join(dir, "labctl.bolt"),
	}

	var out bytes.Buffer

	resetFlags(t, rootCmd)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(global, args...))

	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.ExecuteContext(context.Background())

	closeBackend()

	if cfg != nil {
		require.Equal(t, config.StorageFile, cfg.Storage, "commands under test never use the OS keyring")
	}

	return out.String(), err
}

func TestEquipmentListCommand(t *testing.T) {
	network := startBackend(t)

	out, err := runCLI(t, "equipment", "list", "-p", "status=available")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Centrifuge"`)
	assert.Contains(t, out, `"status": "available"`)
	assert.Contains(t, network.Requests(), backendHost+"/api/equipment")
}

func TestEquipmentImageURLCommand(t *testing.T) {
	startBackend(t)

	out, err := runCLI(t, "equipment", "image-url", "1")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000/uploads/equipment/c.jpg\n", out)
}

func TestRawRequestCommand(t *testing.T) {
	startBackend(t)

	out, err := runCLI(t, "request", "get", "/equipment")
	require.NoError(t, err)
	assert.Contains(t, out, `"success": true`)
}

func TestEndpointShowCommand(t *testing.T) {
	startBackend(t)

	out, err := runCLI(t, "endpoint", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "http://"+backendHost+"/api")
	assert.Contains(t, out, "development")
}

func TestAuthStatusWithoutToken(t *testing.T) {
	network := startBackend(t)

	out, err := runCLI(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
	assert.Zero(t, network.Total())
}

func TestUnreachableBackendFails(t *testing.T) {
	network := startBackend(t)
	network.Remove(backendHost)

	_, err := runCLI(t, "equipment", "get", "1")
	require.Error(t, err)
	assert.Contains(t, describeError(err), "backend unreachable")
}

func TestSequentialRunsKeepGlobalFlags(t *testing.T) {
	network := startBackend(t)

	_, err := runCLI(t, "equipment", "list", "-p", "status=available")
	require.NoError(t, err)

	out, err := runCLI(t, "equipment", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": ""`, "query params of an earlier run do not leak")

	out, err = runCLI(t, "endpoint", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "http://"+backendHost+"/api")
	assert.Equal(t, config.ModeDevelopment, cfg.Mode)
	assert.Equal(t, "10.0.0.5:19000", cfg.HostURI)
	assert.Equal(t, 2, countRequests(network, backendHost+"/api/equipment"))
}

func countRequests(network *testnet.Network, path string) int {
	n := 0

	for _, r := range network.Requests() {
		if r == path {
			n++
		}
	}

	return n
}

func stubConfirm(t *testing.T, answer bool) *[]string {
	t.Helper()

	var prompts []string

	prev := confirm
	confirm = func(prompt string) bool {
		prompts = append(prompts, prompt)
		return answer
	}

	t.Cleanup(func() { confirm = prev })

	return &prompts
}

func TestDeclinedDeleteNeverConnects(t *testing.T) {
	network := startBackend(t)
	prompts := stubConfirm(t, false)

	out, err := runCLI(t, "equipment", "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "Cancelled.\n", out)
	assert.Equal(t, []string{"Delete equipment 1? [y/N]: "}, *prompts)
	assert.Zero(t, network.Total())

	out, err = runCLI(t, "inventory", "lab", "delete", "4")
	require.NoError(t, err)
	assert.Equal(t, "Cancelled.\n", out)
	assert.Equal(t, "Delete lab item 4? [y/N]: ", (*prompts)[1])
	assert.Zero(t, network.Total())
}

func TestConfirmedDeleteRuns(t *testing.T) {
	network := startBackend(t)
	stubConfirm(t, true)

	out, err := runCLI(t, "equipment", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"message": "Equipment deleted"`)
	assert.Contains(t, network.Requests(), backendHost+"/api/equipment/1")
}

func TestForcedDeleteSkipsPrompt(t *testing.T) {
	startBackend(t)
	prompts := stubConfirm(t, false)

	out, err := runCLI(t, "equipment", "delete", "--force", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"success": true`)
	assert.Empty(t, *prompts)
}
