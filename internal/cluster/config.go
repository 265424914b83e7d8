package cluster

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

var (
	ErrNoClusterName = errors.New("cluster: name missing")
	ErrNoNodeID      = errors.New("cluster: node id missing")
	ErrNoCredentials = errors.New("cluster: user or password missing")
)

// ConfigError is fatal. A pass never starts without a readable,
// valid cluster configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("cluster config %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("cluster config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config identifies this node and the peers it reconciles against.
// It is built once and passed into constructors, never read ambiently.
type Config struct {
	Name     string   `json:"name" mapstructure:"name"`
	NodeID   string   `json:"node" mapstructure:"node"`
	Peers    []string `json:"peers" mapstructure:"peers"`
	User     string   `json:"user" mapstructure:"user"`
	Password string   `json:"password" mapstructure:"password"`

	// VerifyTLS guards certificate verification on peer requests.
	// Disabling it is an explicit operator decision.
	VerifyTLS bool `json:"verify_tls" mapstructure:"verify_tls"`
}

func (c *Config) Validate() error {
	if c.Name == "" {
		return &ConfigError{Err: ErrNoClusterName}
	}
	if c.NodeID == "" {
		return &ConfigError{Err: ErrNoNodeID}
	}
	if c.User == "" || c.Password == "" {
		return &ConfigError{Err: ErrNoCredentials}
	}
	for i, peer := range c.Peers {
		normalized, err := normalizePeer(peer)
		if err != nil {
			return &ConfigError{Err: fmt.Errorf("peer %q: %w", peer, err)}
		}
		c.Peers[i] = normalized
	}
	return nil
}

// NodeInfo is this node's own identity as reported on /cluster/node.
type NodeInfo struct {
	Node    string `json:"node"`
	Cluster string `json:"cluster"`
}

func (c *Config) NodeInfo() *NodeInfo {
	return &NodeInfo{Node: c.NodeID, Cluster: c.Name}
}

// LoadConfig reads a cluster config from a JSON file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	cfg := Config{VerifyTLS: true}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizePeer(peer string) (string, error) {
	if peer == "" {
		return "", errors.New("empty address")
	}
	if !strings.Contains(peer, "://") {
		peer = "https://" + peer
	}
	u, err := url.Parse(peer)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("missing host")
	}
	return strings.TrimRight(u.String(), "/"), nil
}
