// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles configuration and database setup
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles provider authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage provider authorization",
		Commands: []*cli.Command{
			{
				Name:  "providers",
				Usage: "List known OAuth2 providers and their scopes",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthProviders,
			},
			{
				Name:  "login",
				Usage: "Authorize with a provider using OAuth2 and save the token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "provider",
						Aliases:  []string{"p"},
						Usage:    "Provider name (e.g. instagram)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Transfer direction to authorize (export or import)",
						Value: "export",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Data category to authorize",
						Value: "PHOTOS",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Token file path (default: ~/.portx/<provider>_token.json)",
					},
				},
				Action: r.AuthLogin,
			},
		},
	}
}

// importCommand handles imports into destination services
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import exported data into a destination service",
		Commands: []*cli.Command{
			{
				Name:  "daybook",
				Usage: "Create Daybook albums from a photos export bundle",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to photos container JSON",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Daybook access token",
					},
					&cli.StringFlag{
						Name:  "token-file",
						Usage: "Path to a saved OAuth2 token JSON",
					},
					&cli.StringFlag{
						Name:  "job",
						Usage: "Job ID to resume",
					},
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "Daybook album endpoint (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output result as JSON",
					},
				},
				Action: r.ImportDaybook,
			},
		},
	}
}

// jobsCommand handles job history
func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "Inspect import jobs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List jobs, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (pending, running, completed, failed)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.JobsList,
			},
			{
				Name:  "show",
				Usage: "Show a job report with imported and failed items",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Job ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Report format (json, csv, markdown, txt)",
						Value: "txt",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the report to a file instead of stdout",
					},
				},
				Action: r.JobsShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a job from history",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Job ID",
						Required: true,
					},
				},
				Action: r.JobsDelete,
			},
		},
	}
}
