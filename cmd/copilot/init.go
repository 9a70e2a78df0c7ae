// ABOUTME: Interactive config file creation for the copilot CLI
// ABOUTME: Prompts for addresses, backend, storage and tailnet settings and writes YAML

package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/config"
)

// initFile is the subset of config written by init
type initFile struct {
	Server struct {
		HTTPAddr string `yaml:"http_addr,omitempty"`
	} `yaml:"server"`
	Tailscale struct {
		Enabled   bool   `yaml:"enabled"`
		Hostname  string `yaml:"hostname,omitempty"`
		AuthKey   string `yaml:"auth_key,omitempty"`
		Ephemeral bool   `yaml:"ephemeral,omitempty"`
		Funnel    bool   `yaml:"funnel,omitempty"`
	} `yaml:"tailscale"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Backend struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"backend"`
	Session struct {
		Secret string `yaml:"secret"`
		TTL    string `yaml:"ttl"`
	} `yaml:"session"`
	Tokens struct {
		EncryptionKey string `yaml:"encryption_key,omitempty"`
	} `yaml:"tokens"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func yes(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "y"
}

func runInit(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "copilot configuration setup")
	fmt.Fprintln(out, "===========================")
	fmt.Fprintln(out)

	defaultDBPath := filepath.Join(config.DefaultDataPath(), "copilot.db")

	outputFile := prompt(reader, out, "Config file path", config.DefaultPath())
	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, out, "File exists. Overwrite?", "no")) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	var f initFile

	fmt.Fprintln(out, "\n--- Server Configuration ---")
	f.Server.HTTPAddr = prompt(reader, out, "HTTP address", config.DefaultHTTPAddr)

	fmt.Fprintln(out, "\n--- Backend Configuration ---")
	f.Backend.BaseURL = prompt(reader, out, "Chat backend URL", "http://localhost:8000")
	f.Backend.Timeout = prompt(reader, out, "Request timeout", config.DefaultBackendTimeout.String())

	fmt.Fprintln(out, "\n--- Storage Configuration ---")
	f.Database.Path = prompt(reader, out, "SQLite database path", defaultDBPath)
	if yes(prompt(reader, out, "Encrypt stored source tokens?", "yes")) {
		key, err := randomSecret()
		if err != nil {
			return fmt.Errorf("generating encryption key: %w", err)
		}
		f.Tokens.EncryptionKey = key
	}

	secret, err := randomSecret()
	if err != nil {
		return fmt.Errorf("generating session secret: %w", err)
	}
	f.Session.Secret = secret
	f.Session.TTL = config.DefaultSessionTTL.String()

	fmt.Fprintln(out, "\n--- Tailscale Configuration ---")
	f.Tailscale.Enabled = yes(prompt(reader, out, "Enable Tailscale?", "no"))
	if f.Tailscale.Enabled {
		f.Server.HTTPAddr = ""
		f.Tailscale.Hostname = prompt(reader, out, "Tailscale hostname", "copilot")
		f.Tailscale.AuthKey = prompt(reader, out, "Tailscale auth key (leave empty to use TS_AUTHKEY)", "")
		f.Tailscale.Ephemeral = yes(prompt(reader, out, "Ephemeral node?", "no"))
		f.Tailscale.Funnel = yes(prompt(reader, out, "Enable Funnel (public HTTPS)?", "no"))
	}

	fmt.Fprintln(out, "\n--- Logging Configuration ---")
	f.Logging.Level = prompt(reader, out, "Log level (debug/info/warn/error)", "info")
	f.Logging.Format = prompt(reader, out, "Log format (text/json)", "text")

	body, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	content := "# copilot configuration\n# Generated by copilot init\n\n" + string(body)

	// Refuse to write something serve would reject
	if _, err := config.Parse(outputFile, []byte(content)); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(f.Database.Path)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", outputFile)
	fmt.Fprintf(out, "Data directory: %s\n", dataDir)
	fmt.Fprintln(out, "\nTo start the server:")
	fmt.Fprintln(out, "  copilot serve")

	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		// On EOF or error, return default
		fmt.Fprintln(out)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
