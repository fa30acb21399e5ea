package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/taskboard/internal/boarddir"
	"github.com/nibzard/taskboard/internal/config"
)

// configCommand shows the effective configuration, prints an example file
// or writes one into the project.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	action := "show"
	if len(args) > 0 {
		action = args[0]
		args = args[1:]
	}
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	switch action {
	case "show":
		return showConfig(cws)
	case "example":
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	case "init":
		return initConfig(cws.Config.ProjectRoot)
	default:
		return fmt.Errorf("unknown config action %q, must be one of: show, example, init", action)
	}
}

func showConfig(cws *config.ConfigWithSources) error {
	if len(cws.Files) == 0 {
		fmt.Fprintln(stdout, "# no config files loaded")
	}
	for _, f := range cws.Files {
		fmt.Fprintf(stdout, "# loaded %s\n", f)
	}
	fmt.Fprintln(stdout)

	shown := *cws.Config
	if shown.RedisPassword != "" {
		shown.RedisPassword = "********"
	}
	if err := toml.NewEncoder(stdout).Encode(shown); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "# sources")
	for _, field := range config.Fields() {
		fmt.Fprintf(stdout, "# %-17s %s\n", field, cws.Sources[field])
	}
	return nil
}

func initConfig(projectRoot string) error {
	path := boarddir.ConfigPath(projectRoot)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if _, err := boarddir.Ensure(projectRoot); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}
