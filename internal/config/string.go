package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/atlanticdynamic/bottery/internal/fancy"
)

const maxOptionValueLength = 40

// String returns a pretty-printed tree representation of the config
func (c *Config) String() string {
	return ConfigTree(c)
}

// ConfigTree converts a Config struct into a rendered tree string
func ConfigTree(cfg *Config) string {
	t := fancy.Tree()
	t.Root(fancy.RootStyle.Render(fmt.Sprintf("Bottery Config (%s)", cfg.Version)))

	t.Child(fmt.Sprintf("Handlers: %s", cfg.Handlers))

	loggingTree := fancy.BranchNode("Logging", "")
	loggingTree.Child(fmt.Sprintf("Format: %s", cfg.Logging.Format))
	loggingTree.Child(fmt.Sprintf("Level: %s", cfg.Logging.Level))
	if cfg.Logging.Output != "" {
		loggingTree.Child(fmt.Sprintf("Output: %s", cfg.Logging.Output))
	}
	t.Child(loggingTree)

	serverTree := fancy.BranchNode("Server", "")
	serverTree.Child(fmt.Sprintf("Port: %d", cfg.Server.Port))
	t.Child(serverTree)

	supervisorTree := fancy.BranchNode("Supervisor", "")
	supervisorTree.Child(fmt.Sprintf("Failure policy: %s", cfg.Supervisor.FailurePolicy))
	supervisorTree.Child(fmt.Sprintf("Max restarts: %d", cfg.Supervisor.MaxRestarts))
	supervisorTree.Child(fmt.Sprintf("Shutdown: %s (drain %s)", cfg.Supervisor.Shutdown, cfg.Supervisor.DrainTimeout))
	t.Child(supervisorTree)

	platformsTree := fancy.BranchNode("Platforms", fmt.Sprintf("(%d)", len(cfg.Platforms)))
	for _, p := range cfg.Platforms {
		platformsTree.Child(platformTree(p))
	}
	t.Child(platformsTree)

	return t.String()
}

func platformTree(p Platform) any {
	pt := fancy.Tree()
	pt.Root(fmt.Sprintf("%s → %s", fancy.PlatformText(p.Name), fancy.EngineText(p.Engine)))
	for _, key := range slices.Sorted(maps.Keys(p.Options)) {
		value := fancy.TruncateString(fmt.Sprintf("%v", p.Options[key]), maxOptionValueLength)
		pt.Child(fmt.Sprintf("%s: %s", key, value))
	}
	return pt
}
