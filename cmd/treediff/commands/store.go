// Package commands implements CLI command handlers for treediff.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sumatoshi-tech/treediff/pkg/config"
	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
	"github.com/Sumatoshi-tech/treediff/pkg/observability"
	"github.com/Sumatoshi-tech/treediff/pkg/odb"
	"github.com/Sumatoshi-tech/treediff/pkg/version"
)

// Sentinel errors shared by the commands.
var (
	// ErrTreeNotFound indicates a root tree argument that the object store
	// cannot produce.
	ErrTreeNotFound = errors.New("tree not found")
	// ErrNotATree indicates a root argument that resolves to a non-tree object.
	ErrNotATree = errors.New("object is not a tree")
	// ErrUnknownFormat indicates an unsupported --format value.
	ErrUnknownFormat = errors.New("unknown output format; expected text, json or yaml")
)

// emptyTreeArg lets callers diff against nothing without spelling out the
// well-known empty tree hash.
const emptyTreeArg = "empty"

// openStore builds the object store per configuration: a loose store under
// the repository's objects directory, wrapped with the LRU cache when
// enabled. The returned CachedStore is nil when caching is off.
func openStore(cfg *config.Config, gitDir string) (odb.Store, *odb.CachedStore, error) {
	if gitDir == "" {
		gitDir = cfg.Repository.GitDir
	}

	var store odb.Store = odb.NewLooseStore(gitDir + "/objects")

	if !cfg.Cache.Enabled {
		return store, nil, nil
	}

	size, err := cfg.CacheSizeBytes()
	if err != nil {
		return nil, nil, err
	}

	cached := odb.NewCachedStore(store, size)

	return cached, cached, nil
}

// resolveTreeArg turns a CLI tree argument into a decoded tree. The literal
// "empty" (or the well-known empty tree hash) resolves to the empty tree.
func resolveTreeArg(store odb.Store, arg string, buf *[]byte) (*gitobj.Tree, error) {
	if arg == emptyTreeArg {
		return gitobj.EmptyTree, nil
	}

	hash, err := gitobj.ParseHash(arg)
	if err != nil {
		return nil, fmt.Errorf("parse tree argument: %w", err)
	}

	if hash == odb.HashObject(odb.KindTree, nil) {
		return gitobj.EmptyTree, nil
	}

	obj, err := store.Object(hash, buf)
	if err != nil {
		if errors.Is(err, odb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTreeNotFound, arg)
		}

		return nil, fmt.Errorf("read tree %s: %w", arg, err)
	}

	if obj.Kind != odb.KindTree {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotATree, arg, obj.Kind)
	}

	tree := &gitobj.Tree{}
	if err := gitobj.DecodeTree(obj.Data, tree); err != nil {
		return nil, fmt.Errorf("decode tree %s: %w", arg, err)
	}

	return tree, nil
}

// initObservability wires logging, tracing and metrics per configuration and
// returns the providers plus their shutdown hook.
func initObservability(cfg *config.Config) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = ""
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = parseLogLevel(cfg.Logging.Level)
	obsCfg.LogJSON = strings.EqualFold(cfg.Logging.Format, "json")

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
