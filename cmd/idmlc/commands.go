package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"idmlc/common"
	"idmlc/config"
	"idmlc/convert"
	"idmlc/state"
)

const ingestHelp = `%s
SOURCE:
    path to IDML package(s) to process, following forms are supported:
        path to a file: "[path_to_file]file.idml"
        path to a directory: "[path_to_directory]directory" - recursively process all packages under directory (symbolic links are not followed)

	Files without .idml extension are accepted when they are zip archives
	carrying IDML mimetype member.

DESTINATION:
    always a path, model file name(s) and extension will be derived from other parameters
    if absent - current working directory
`

const dumpConfigHelp = `%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:         "ingest",
		Usage:        "Ingests IDML package(s) and writes resolved layout model",
		OnUsageError: usageErrorHandler,
		Action:       convert.Run,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Value: common.OutputFmtJson.String(),
				Usage: "model output `TYPE` (supported types: " + strings.Join(common.OutputFmtNames(), ", ") + ")"},
			&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "when producing output do not keep input directory structure"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exists, overwrite files"},
			&cli.StringFlag{Name: "force-zip-cp",
				Usage: "Force `ENCODING` for ALL non UTF-8 member names in processed packages (see IANA.org for character set names)"},
		},
		ArgsUsage:          "SOURCE [DESTINATION]",
		CustomHelpTemplate: fmt.Sprintf(ingestHelp, cli.CommandHelpTemplate),
	}
}

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "dumpconfig",
		Usage: "Dumps either default or actual configuration (YAML)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
		},
		OnUsageError:       usageErrorHandler,
		Action:             dumpConfiguration,
		ArgsUsage:          "DESTINATION",
		CustomHelpTemplate: fmt.Sprintf(dumpConfigHelp, cli.CommandHelpTemplate),
	}
}

func dumpConfiguration(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	kind, data := "actual", []byte(nil)
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	var out io.Writer = os.Stdout
	if len(fname) > 0 {
		var f *os.File
		if f, err = os.Create(fname); err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer func() {
			err = multierr.Append(err, f.Close())
		}()
		out = f
	} else {
		fname = "STDOUT"
	}
	env.Log.Info("Writing configuration", zap.String("state", kind), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
