package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/usagetop/usagetop/internal/core"
)

// Credentials holds bearer tokens keyed by account ID. They live in a
// separate 0600 file so settings.json can be shared or committed
// without leaking secrets; tokens never round-trip through Config.
type Credentials struct {
	Tokens map[string]string `json:"tokens"`
}

// credMu guards read-modify-write cycles on the credentials file.
var credMu sync.Mutex

func CredentialsPath() string {
	return filepath.Join(ConfigDir(), "credentials.json")
}

func LoadCredentials() (Credentials, error) {
	return LoadCredentialsFrom(CredentialsPath())
}

func LoadCredentialsFrom(path string) (Credentials, error) {
	creds := Credentials{Tokens: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, nil
		}
		return creds, fmt.Errorf("reading credentials: %w", err)
	}

	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{Tokens: make(map[string]string)}, fmt.Errorf("parsing credentials %s: %w", path, err)
	}

	if creds.Tokens == nil {
		creds.Tokens = make(map[string]string)
	}

	return creds, nil
}

// Apply injects stored tokens into matching accounts. Accounts that
// already carry a token (for example from an env var override at a
// higher layer) are left alone.
func (c Credentials) Apply(accounts []core.AccountConfig) {
	for i := range accounts {
		if accounts[i].Token != "" {
			continue
		}
		if token, ok := c.Tokens[accounts[i].ID]; ok {
			accounts[i].Token = token
		}
	}
}

func SaveCredential(accountID, token string) error {
	return SaveCredentialTo(CredentialsPath(), accountID, token)
}

func SaveCredentialTo(path, accountID, token string) error {
	credMu.Lock()
	defer credMu.Unlock()

	creds, err := LoadCredentialsFrom(path)
	if err != nil {
		creds = Credentials{Tokens: make(map[string]string)}
	}
	creds.Tokens[accountID] = token

	return writeCredentials(path, creds)
}

func DeleteCredential(accountID string) error {
	return DeleteCredentialFrom(CredentialsPath(), accountID)
}

func DeleteCredentialFrom(path, accountID string) error {
	credMu.Lock()
	defer credMu.Unlock()

	creds, err := LoadCredentialsFrom(path)
	if err != nil {
		return err
	}
	delete(creds.Tokens, accountID)

	return writeCredentials(path, creds)
}

func writeCredentials(path string, creds Credentials) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}
