package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"k8s.io/klog/v2"
)

var (
	ErrMissingAPIKey    = errors.New("HELIUS_API_KEY not set in .env")
	ErrUnknownCluster   = errors.New("unknown HELIUS_CLUSTER")
	ErrInvalidVerbosity = errors.New("invalid STAKE_VERBOSITY")
)

// klogFlags holds klog's settings. They are driven from the environment
// rather than exposed on the command line.
var klogFlags = flag.NewFlagSet("klog", flag.ContinueOnError)

func init() {
	klog.InitFlags(klogFlags)
}

var heliusEndpoints = map[string]string{
	"mainnet-beta": "https://mainnet.helius-rpc.com/?api-key=%s",
	"devnet":       "https://devnet.helius-rpc.com/?api-key=%s",
}

// Config is read once at startup, before any network activity.
type Config struct {
	Cluster     string
	RpcEndpoint string
}

// LoadConfig loads .env from the current directory if present and resolves
// the Helius RPC endpoint from the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		klog.Info("Info: .env file not found, using process environment.")
	}
	if err := setVerbosity(os.LookupEnv); err != nil {
		return nil, err
	}
	return configFromEnv(os.LookupEnv)
}

// setVerbosity applies STAKE_VERBOSITY as klog's -v level. Level 1 logs
// every decoded instruction of the stake transaction.
func setVerbosity(lookup func(string) (string, bool)) error {
	v, _ := lookup("STAKE_VERBOSITY")
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if err := klogFlags.Set("v", v); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidVerbosity, v)
	}
	return nil
}

func configFromEnv(lookup func(string) (string, bool)) (*Config, error) {
	apiKey, _ := lookup("HELIUS_API_KEY")
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	// An explicit URL (private node, local validator) wins over the cluster.
	if url, ok := lookup("HELIUS_RPC_URL"); ok && strings.TrimSpace(url) != "" {
		return &Config{Cluster: "custom", RpcEndpoint: strings.TrimSpace(url)}, nil
	}

	cluster := "mainnet-beta"
	if c, ok := lookup("HELIUS_CLUSTER"); ok && strings.TrimSpace(c) != "" {
		cluster = strings.TrimSpace(c)
	}
	format, ok := heliusEndpoints[cluster]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCluster, cluster)
	}

	return &Config{
		Cluster:     cluster,
		RpcEndpoint: fmt.Sprintf(format, apiKey),
	}, nil
}
