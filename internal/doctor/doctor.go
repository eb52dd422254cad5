// Package doctor runs readiness diagnostics for config, credentials, audio, and providers.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rbright/loop/internal/audio"
	"github.com/rbright/loop/internal/config"
	"github.com/rbright/loop/internal/provider"
)

const (
	httpProbeTimeout = 3 * time.Second
	grpcProbeTimeout = 3 * time.Second
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", status, check.Name, check.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Options supplies the collaborators doctor probes. Zero values use the real ones.
type Options struct {
	OpenBackend func(name string) (audio.Backend, error)
	HTTPClient  *http.Client
}

// Run executes config, credential, audio, and network checks for a loaded config.
func Run(ctx context.Context, loaded config.Loaded, opts Options) Report {
	if opts.OpenBackend == nil {
		opts.OpenBackend = audio.OpenBackend
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: httpProbeTimeout}
	}
	cfg := loaded.Config

	checks := []Check{checkConfig(loaded)}
	checks = append(checks,
		checkKey("transcription.api_key", cfg.Transcription.Provider, cfg.Transcription.APIKey),
		checkKey("submission.api_key", cfg.Submission.Provider, cfg.Submission.APIKey),
	)
	checks = append(checks, checkAudioSelection(ctx, cfg.Audio, opts.OpenBackend))

	endpoints := provider.Endpoints(cfg)
	checks = append(checks,
		checkEndpoint(ctx, opts.HTTPClient, "transcription.endpoint", endpoints[0]),
		checkEndpoint(ctx, opts.HTTPClient, "submission.endpoint", endpoints[1]),
	)

	if target := strings.TrimSpace(cfg.Doctor.GRPCHealth); target != "" {
		checks = append(checks, checkGRPCHealth(ctx, target, grpcProbeTimeout))
	}

	return Report{Checks: checks}
}

func checkConfig(loaded config.Loaded) Check {
	message := fmt.Sprintf("loaded %q", loaded.Path)
	if !loaded.Exists {
		message = fmt.Sprintf("%q not found; using defaults", loaded.Path)
	}
	if n := len(loaded.Warnings); n > 0 && loaded.Exists {
		message += fmt.Sprintf(" (%d warnings)", n)
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkKey reports whether a provider credential is present without printing it.
func checkKey(name, providerName, key string) Check {
	if strings.TrimSpace(key) == "" {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("no key for %s", providerName)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%s key set (%s)", providerName, maskKey(key))}
}

func maskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.AudioConfig, open func(string) (audio.Backend, error)) Check {
	backend, err := open(cfg.Backend)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	defer backend.Close()

	selection, err := audio.SelectDevice(ctx, backend, cfg.Input, cfg.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q via %s", selection.Device.Label(), backend.Name())
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkEndpoint treats any HTTP answer as reachable; auth is covered by the key checks.
func checkEndpoint(ctx context.Context, client *http.Client, name, base string) Check {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base, nil)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("invalid url %q: %v", base, err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, base)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("reachable at %s (HTTP %d)", base, resp.StatusCode)}
}
