// Command checkdigit computes and validates check digits from the shell.
//
// Usage:
//
//	checkdigit compute -s cpf 529982247
//	checkdigit validate -s cnpj 11.222.333/0001-81
//	checkdigit validate-batch -s no-orgnr < numbers.txt
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/olgasafonova/checkdigit-mcp-server/cmd/checkdigit/commands"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/config"
	apperrors "github.com/olgasafonova/checkdigit-mcp-server/internal/errors"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/service"
)

func schemeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "scheme",
		Aliases:  []string{"s"},
		Required: true,
		Usage:    "Scheme name (run 'checkdigit schemes' for the list)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

// firstArg returns the single positional argument of cmd.
func firstArg(cmd *cli.Command, name string) (string, error) {
	if cmd.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one %s argument, got %d", name, cmd.NArg())
	}
	return cmd.Args().First(), nil
}

func newCommand(svc *service.Service, streams commands.IOTuple) *cli.Command {
	return &cli.Command{
		Name:    "checkdigit",
		Usage:   "Compute and validate modulo 10 and modulo 11 check digits",
		Version: "1.0.0",
		Reader:  streams.Reader,
		Writer:  streams.Writer,
		Commands: []*cli.Command{
			{
				Name:      "compute",
				Usage:     "Compute the check digits of a base number",
				ArgsUsage: "<base>",
				Flags: []cli.Flag{
					schemeFlag(),
					&cli.StringFlag{
						Name:  "variant",
						Usage: "Modulo 11 variant override: normal, barcode, unadjusted",
					},
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					base, err := firstArg(cmd, "base")
					if err != nil {
						return err
					}
					return commands.RunCompute(ctx, svc, streams.Writer,
						cmd.String("scheme"), base, cmd.String("variant"), cmd.String("format"))
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate a full identifier; exits non-zero when invalid",
				ArgsUsage: "<identifier>",
				Flags:     []cli.Flag{schemeFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := firstArg(cmd, "identifier")
					if err != nil {
						return err
					}
					return commands.RunValidate(ctx, svc, streams.Writer, cmd.String("scheme"), id, cmd.String("format"))
				},
			},
			{
				Name:  "validate-batch",
				Usage: "Validate one identifier per line read from stdin",
				Flags: []cli.Flag{schemeFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunValidateBatch(ctx, svc, streams, cmd.String("scheme"), cmd.String("format"))
				},
			},
			{
				Name:      "complete",
				Usage:     "Append check digits to a base number",
				ArgsUsage: "<base>",
				Flags:     []cli.Flag{schemeFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					base, err := firstArg(cmd, "base")
					if err != nil {
						return err
					}
					return commands.RunComplete(ctx, svc, streams.Writer, cmd.String("scheme"), base, cmd.String("format"))
				},
			},
			{
				Name:      "explain",
				Usage:     "Show the weights and products behind a check digit",
				ArgsUsage: "<base>",
				Flags:     []cli.Flag{schemeFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					base, err := firstArg(cmd, "base")
					if err != nil {
						return err
					}
					return commands.RunExplain(ctx, svc, streams.Writer, cmd.String("scheme"), base, cmd.String("format"))
				},
			},
			{
				Name:      "detect",
				Usage:     "Guess the scheme of an identifier",
				ArgsUsage: "<identifier>",
				Flags:     []cli.Flag{formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := firstArg(cmd, "identifier")
					if err != nil {
						return err
					}
					return commands.RunDetect(ctx, svc, streams.Writer, id, cmd.String("format"))
				},
			},
			{
				Name:  "schemes",
				Usage: "List the supported schemes",
				Flags: []cli.Flag{formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunSchemes(ctx, svc, streams.Writer, cmd.String("format"))
				},
			},
		},
	}
}

func main() {
	svc := commands.NewService(config.Load())
	defer svc.Close()

	if err := newCommand(svc, commands.DefaultIO()).Run(context.Background(), os.Args); err != nil {
		slog.Error("checkdigit failed", slog.Any("error", err))
		svc.Close()
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when the input itself was rejected (bad base, unknown
// scheme) and 1 for every other failure, including an invalid identifier.
func exitCode(err error) int {
	if apperrors.IsValidation(err) || apperrors.IsNotFound(err) {
		return 2
	}
	return 1
}
