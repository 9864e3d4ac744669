/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command studentctl reads and writes tab_student rows from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tomoncle/studentdb"
	"github.com/tomoncle/studentdb/config"
	"github.com/tomoncle/studentdb/entity"
	"github.com/tomoncle/studentdb/types"
	"github.com/tomoncle/studentdb/utils"
)

var (
	commit = "none"
	date   = "unknown"
)

type cli struct {
	configPath string
	verbosity  int
	out        io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{out: stdout}
	rootCmd := &cobra.Command{
		Use:           "studentctl",
		Short:         "studentctl - Student table access",
		Long:          `studentctl saves, finds, lists and deletes students in tab_student using the configured database.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	// Logs go to stderr so stdout stays valid JSON.
	utils.SetConsoleWriter(stderr)

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file (default "+config.DefaultPath+")")
	rootCmd.PersistentFlags().CountVarP(&c.verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.AddCommand(
		c.saveCmd(),
		c.getCmd(),
		c.findByNameCmd(),
		c.deleteCmd(),
		c.listCmd(),
		c.countCmd(),
		c.initSchemaCmd(),
		c.healthCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "studentctl %s (commit: %s, built: %s)\n", studentdb.Version, commit, date)
			},
		},
	)
	return rootCmd
}

// withService loads configuration, opens the service for the duration of fn
// and closes it afterwards.
func (c *cli) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *studentdb.Service) error) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	switch {
	case c.verbosity >= 2:
		cfg.Log.Level = "trace"
	case c.verbosity == 1:
		cfg.Log.Level = "debug"
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := studentdb.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	return fn(ctx, svc)
}

func (c *cli) printJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid student id %q", s)
	}
	return id, nil
}

func (c *cli) saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save ID NAME SEX",
		Short: "Insert a student or overwrite the one with the same id",
		Long:  `SEX is a code (0 unknown, 1 male, 2 female) or one of the names unknown, male, female.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sex, ok := entity.ParseSex(args[2])
			if !ok {
				return fmt.Errorf("invalid sex %q", args[2])
			}
			return c.withService(cmd, func(ctx context.Context, svc *studentdb.Service) error {
				saved, err := svc.Students().Save(ctx, entity.NewStudent(id, args[1], sex))
				if err != nil {
					return err
				}
				return c.printJSON(saved)
			})
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Find a student by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withService(cmd, func(ctx context.Context, svc *studentdb.Service) error {
				student, ok, err := svc.Students().FindByID(ctx, id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("student %d not found", id)
				}
				return c.printJSON(student)
			})
		},
	}
}

func (c *cli) findByNameCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "find-by-name NAME",
		Short: "Find a student by exact name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *studentdb.Service) error {
				if all {
					students, err := svc.Students().FindAllByName(ctx, args[0])
					if err != nil {
						return err
					}
					return c.printJSON(students)
				}
				student, ok, err := svc.Students().FindByName(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("student %q not found", args[0])
				}
				return c.printJSON(student)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Print every student with the name")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a student by id; a missing id is not an error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withService(cmd, func(ctx context.Context, svc *studentdb.Service) error {
				if err := svc.Students().DeleteByID(ctx, id); err != nil {
					return err
				}
				return c.printJSON(map[string]int{"deleted": id})
			})
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var (
		page int
		size int
		sort []string
		desc bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := types.ASC
			if desc {
				dir = types.DESC
			}
			req := types.NewPageRequest(page, size, types.SortBy(dir, sort...))
			return c.withService(cmd, func(ctx context.Context, svc *studentdb.Service) error {
				result, err := svc.Students().FindPage(ctx, req)
				if err != nil {
					return err
				}
				return c.printJSON(result)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "Zero-based page number")
	cmd.Flags().IntVar(&size, "size", types.DefaultPageSize, "Page size")
	cmd.Flags().StringSliceVar(&sort, "sort", nil, "Sort properties, e.g. studentId or student_name")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}

func (c *cli) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *studentdb.Service) error {
				n, err := svc.Students().Count(ctx)
				if err != nil {
					return err
				}
				return c.printJSON(map[string]int{"count": n})
			})
		},
	}
}

func (c *cli) initSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-schema",
		Short: "Create missing tables regardless of generate_ddl",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *studentdb.Service) error {
				if err := svc.InitSchema(ctx); err != nil {
					return err
				}
				return c.printJSON(map[string]bool{"ok": true})
			})
		},
	}
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Ping the database and print pool statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *studentdb.Service) error {
				status := svc.Health(ctx)
				if err := c.printJSON(map[string]interface{}{
					"health": status,
					"stats":  svc.Stats(),
				}); err != nil {
					return err
				}
				if !status.Healthy {
					return fmt.Errorf("database unhealthy: %s", status.LastError)
				}
				return nil
			})
		},
	}
}
