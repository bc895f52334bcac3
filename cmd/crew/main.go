package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"crewtrack/internal/analytics"
	"crewtrack/internal/app"
	"crewtrack/internal/config"
	"crewtrack/internal/dialog"
	"crewtrack/internal/domain"
	"crewtrack/internal/engine"
	"crewtrack/internal/repo"
	"crewtrack/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "crew",
	Short: "Crewtrack CLI",
	Long: `Crewtrack runs the floor-crew task board: a point-valued task catalog,
employees who claim up to three tasks at a time, immutable completion
records, and productivity analytics over them. The same lifecycle is
reachable conversationally ('crew chat', or 'crew serve' for the HTTP
gateway) and directly from this CLI.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("CREWTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor", "cli", "actor recorded in the audit log")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor", rootCmd.PersistentFlags().Lookup("actor"))
}

func registerCommands() {
	rootCmd.AddCommand(employeeCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(assignCmd())
	rootCmd.AddCommand(claimCmd())
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(cancelCmd())
	rootCmd.AddCommand(activeCmd())
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(apikeyCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
}

func actor() string { return viper.GetString("actor") }

// --- employee ---

func employeeCmd() *cobra.Command {
	emp := &cobra.Command{Use: "employee", Short: "Manage employees"}
	emp.AddCommand(employeeAddCmd())
	emp.AddCommand(employeeListCmd())
	emp.AddCommand(employeeRenameCmd())
	emp.AddCommand(employeeSalaryCmd())
	emp.AddCommand(employeeDeactivateCmd())
	return emp
}

func employeeAddCmd() *cobra.Command {
	var name string
	var salary float64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				emp, err := e.CreateEmployee(ctx, name, salary, actor())
				if err != nil {
					return err
				}
				return printJSONOrTable(emp)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "employee name")
	cmd.Flags().Float64Var(&salary, "salary", 0, "monthly salary")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("salary")
	return cmd
}

func employeeListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				items, err := e.Repo.ListEmployees(ctx, !all)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Salary", "Chat", "Active"})
				for _, emp := range items {
					chat := ""
					if emp.ChatID != nil {
						chat = fmt.Sprintf("%d", *emp.ChatID)
					}
					tw.AppendRow(table.Row{emp.ID, emp.Name, fmt.Sprintf("%.2f", emp.Salary), chat, emp.Active})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include deactivated employees")
	return cmd
}

func employeeRenameCmd() *cobra.Command {
	var id int64
	var name string
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				return e.RenameEmployee(ctx, id, name, actor())
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "employee id")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func employeeSalaryCmd() *cobra.Command {
	var id int64
	var salary float64
	cmd := &cobra.Command{
		Use:   "salary",
		Short: "Change an employee's salary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				return e.SetEmployeeSalary(ctx, id, salary, actor())
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "employee id")
	cmd.Flags().Float64Var(&salary, "salary", 0, "monthly salary")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("salary")
	return cmd
}

func employeeDeactivateCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Deactivate an employee",
		Long:  "Deactivates an employee. Fails while the employee still holds active assignments; completed history stays queryable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				return e.DeactivateEmployee(ctx, id, actor())
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "employee id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// --- task ---

func taskCmd() *cobra.Command {
	t := &cobra.Command{Use: "task", Short: "Manage the task catalog"}
	t.AddCommand(taskAddCmd())
	t.AddCommand(taskListCmd())
	t.AddCommand(taskRenameCmd())
	t.AddCommand(taskPointsCmd())
	t.AddCommand(taskCategoryCmd())
	t.AddCommand(taskDeleteCmd())
	return t
}

func taskAddCmd() *cobra.Command {
	var name, category string
	var points int
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				t, err := e.CreateTask(ctx, name, points, domain.Category(category), actor())
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "task name")
	cmd.Flags().IntVar(&points, "points", 0, "point value")
	cmd.Flags().StringVar(&category, "category", string(domain.CategoryOther), "category")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("points")
	return cmd
}

func taskListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the task catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				tasks, err := e.Repo.ListTasks(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Category", "Name", "Points"})
				for _, t := range tasks {
					tw.AppendRow(table.Row{t.ID, t.Category, t.Name, t.Points})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func taskRenameCmd() *cobra.Command {
	var id int64
	var name string
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				return e.RenameTask(ctx, id, name, actor())
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "task id")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func taskPointsCmd() *cobra.Command {
	var id int64
	var points int
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Change a task's point value",
		Long:  "Changes the catalog value. Already-claimed and completed work keeps the points it was claimed at.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				return e.SetTaskPoints(ctx, id, points, actor())
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "task id")
	cmd.Flags().IntVar(&points, "points", 0, "point value")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("points")
	return cmd
}

func taskCategoryCmd() *cobra.Command {
	var id int64
	var category string
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Change a task's category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				return e.SetTaskCategory(ctx, id, domain.Category(category), actor())
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "task id")
	cmd.Flags().StringVar(&category, "category", "", "category")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func taskDeleteCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a task from the catalog",
		Long:  "Fails while any active assignment references the task. Completion history keeps its snapshot.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				return e.DeleteTask(ctx, id, actor())
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "task id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// --- lifecycle ---

func assignCmd() *cobra.Command {
	var employeeID, taskID int64
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign a task to an employee",
		Long:  "Same invariants as a self-claim. Notifies the employee's bound chat best effort.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				a, err := e.Assign(ctx, employeeID, taskID, actor())
				if err != nil {
					return err
				}
				return printJSONOrTable(a)
			})
		},
	}
	cmd.Flags().Int64Var(&employeeID, "employee", 0, "employee id")
	cmd.Flags().Int64Var(&taskID, "task", 0, "task id")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func claimCmd() *cobra.Command {
	var employeeID, taskID int64
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim a task for an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				a, err := e.Claim(ctx, employeeID, taskID, actor())
				if err != nil {
					return err
				}
				return printJSONOrTable(a)
			})
		},
	}
	cmd.Flags().Int64Var(&employeeID, "employee", 0, "employee id")
	cmd.Flags().Int64Var(&taskID, "task", 0, "task id")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func completeCmd() *cobra.Command {
	var employeeID, assignmentID int64
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Complete an assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				c, err := e.Complete(ctx, employeeID, assignmentID, actor())
				if err != nil {
					return err
				}
				return printJSONOrTable(c)
			})
		},
	}
	cmd.Flags().Int64Var(&employeeID, "employee", 0, "employee id")
	cmd.Flags().Int64Var(&assignmentID, "assignment", 0, "assignment id")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("assignment")
	return cmd
}

func cancelCmd() *cobra.Command {
	var assignmentID int64
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel an active assignment",
		Long:  "Removes the assignment without recording a completion. Notifies the employee's bound chat best effort.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				d, err := e.Cancel(ctx, assignmentID, actor())
				if err != nil {
					return err
				}
				return printJSONOrTable(d)
			})
		},
	}
	cmd.Flags().Int64Var(&assignmentID, "assignment", 0, "assignment id")
	_ = cmd.MarkFlagRequired("assignment")
	return cmd
}

func activeCmd() *cobra.Command {
	var employeeID int64
	cmd := &cobra.Command{
		Use:   "active",
		Short: "List active assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				var items []repo.AssignmentDetail
				var err error
				if employeeID > 0 {
					items, err = e.Repo.ListAssignmentsByEmployee(ctx, employeeID)
				} else {
					items, err = e.Repo.ListAssignments(ctx)
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Employee", "Task", "Points", "Started"})
				for _, a := range items {
					tw.AppendRow(table.Row{a.ID, a.EmployeeName, a.TaskName, a.TaskPoints, a.StartedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&employeeID, "employee", 0, "filter by employee id")
	return cmd
}

func registerCmd() *cobra.Command {
	var chatID, employeeID int64
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Bind a chat identity to an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				res, emp, err := e.Bind(ctx, chatID, employeeID)
				if err != nil {
					return err
				}
				switch res {
				case engine.BindOk:
					fmt.Printf("chat %d bound to %s (ID: %d)\n", chatID, emp.Name, emp.ID)
				case engine.BindAlreadyBound:
					fmt.Printf("chat %d is already bound to %s (ID: %d)\n", chatID, emp.Name, emp.ID)
				case engine.BindNotFound:
					return fmt.Errorf("employee %d not found", employeeID)
				case engine.BindInactive:
					return fmt.Errorf("employee %d is deactivated", employeeID)
				case engine.BindBoundElsewhere:
					return fmt.Errorf("employee %d is bound to another chat", employeeID)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&chatID, "chat", 0, "chat id")
	cmd.Flags().Int64Var(&employeeID, "employee", 0, "employee id")
	_ = cmd.MarkFlagRequired("chat")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func historyCmd() *cobra.Command {
	var employeeID int64
	var n int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show an employee's recent completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				items, err := e.Repo.ListCompletionsByEmployee(ctx, employeeID, n)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Task", "Points", "Duration (min)", "Ended"})
				for _, c := range items {
					tw.AppendRow(table.Row{c.TaskName, c.PointsEarned, fmt.Sprintf("%.1f", float64(c.DurationSeconds)/60), c.EndedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&employeeID, "employee", 0, "employee id")
	cmd.Flags().IntVar(&n, "n", 20, "number of completions")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func parsePeriod(s string) (analytics.Window, error) {
	switch s {
	case "today":
		return analytics.Today, nil
	case "week":
		return analytics.Week, nil
	case "month":
		return analytics.Month, nil
	case "all":
		return analytics.AllTime, nil
	default:
		return 0, fmt.Errorf("unknown period %q (today|week|month|all)", s)
	}
}

func statsCmd() *cobra.Command {
	var period, by string
	var all bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Productivity analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parsePeriod(period)
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				agg := analytics.New(e.Repo)
				switch by {
				case "employee":
					reports, err := agg.ByEmployee(ctx, w, all)
					if err != nil {
						return err
					}
					if viper.GetBool("json") {
						return printJSON(reports)
					}
					tw := table.NewWriter()
					tw.SetOutputMirror(os.Stdout)
					tw.AppendHeader(table.Row{"Employee", "Done", "Points", "Avg min", "Pts/hour", "Salary/pt"})
					for _, r := range reports {
						tw.AppendRow(table.Row{
							r.Name, r.Completed, r.Points,
							fmt.Sprintf("%.1f", r.AvgDurationMin),
							fmt.Sprintf("%.2f", r.PointsPerHour),
							fmt.Sprintf("%.2f", r.SalaryPerPoint),
						})
					}
					tw.Render()
					return nil
				case "task":
					rows, err := agg.ByTask(ctx, w)
					if err != nil {
						return err
					}
					if viper.GetBool("json") {
						return printJSON(rows)
					}
					tw := table.NewWriter()
					tw.SetOutputMirror(os.Stdout)
					tw.AppendHeader(table.Row{"Category", "Task", "Points", "Done", "Avg min"})
					for _, r := range rows {
						tw.AppendRow(table.Row{r.Category, r.Name, r.Points, r.Completed, fmt.Sprintf("%.1f", r.AvgDurationMin)})
					}
					tw.Render()
					return nil
				case "fleet":
					report, err := agg.Fleet(ctx, w)
					if err != nil {
						return err
					}
					return printJSONOrTable(report)
				default:
					return fmt.Errorf("unknown axis %q (employee|task|fleet)", by)
				}
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", "all", "today|week|month|all")
	cmd.Flags().StringVar(&by, "by", "employee", "employee|task|fleet")
	cmd.Flags().BoolVar(&all, "all", false, "include deactivated employees")
	return cmd
}

// --- chat ---

func chatCmd() *cobra.Command {
	var chatID int64
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the workflow from the terminal",
		Long:  "Reads lines from stdin and feeds them to the conversational state machine as chat messages. Start with /start.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				log := newLogger()
				e.Log = log
				m := dialog.New(e, cfg.Admins, log)
				scanner := bufio.NewScanner(cmd.InOrStdin())
				fmt.Printf("chat %d, type /start (Ctrl-D to quit)\n", chatID)
				for scanner.Scan() {
					line := strings.TrimSpace(scanner.Text())
					if line == "" {
						continue
					}
					replies, err := m.Handle(ctx, chatID, line)
					if err != nil {
						return err
					}
					for _, r := range replies {
						fmt.Println(r.Text)
						for _, row := range r.Keyboard {
							fmt.Println("  [" + strings.Join(row, "] [") + "]")
						}
					}
				}
				return scanner.Err()
			})
		},
	}
	cmd.Flags().Int64Var(&chatID, "chat-id", 1, "chat identity to converse as")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP chat gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, cfg *config.Config) error {
				log := newLogger()
				e.Log = log
				secret := cfg.Gateway.JWTSecret
				if env := os.Getenv("CREWTRACK_JWT_SECRET"); env != "" {
					secret = env
				}
				if secret == "" {
					return errors.New("gateway.jwt_secret or CREWTRACK_JWT_SECRET is required for bearer auth")
				}
				m := dialog.New(e, cfg.Admins, log)
				handler, err := server.New(server.Config{
					Machine:  m,
					Repo:     e.Repo,
					BasePath: basePath,
					Auth:     server.AuthConfig{JWTSecret: secret, Log: log},
					Log:      log,
				})
				if err != nil {
					return err
				}
				if addr == "" {
					addr = cfg.Gateway.Addr
				}
				srv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-ctx.Done()
					sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(sctx)
				}()
				log.Info("gateway listening", zap.String("addr", addr), zap.String("base_path", basePath))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// --- apikey ---

func apikeyCmd() *cobra.Command {
	k := &cobra.Command{Use: "apikey", Short: "Manage gateway API keys"}
	k.AddCommand(apikeyCreateCmd())
	k.AddCommand(apikeyListCmd())
	k.AddCommand(apikeyDeleteCmd())
	return k
}

func apikeyCreateCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key",
		Long:  "Prints the key once. Only its hash is stored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				key := uuid.NewString()
				rec := domain.APIKey{
					ID:        uuid.NewString(),
					Name:      name,
					KeyHash:   repo.HashAPIKey(key),
					CreatedAt: time.Now().UTC().Format(time.RFC3339),
				}
				if err := e.Repo.InsertAPIKey(ctx, rec); err != nil {
					return err
				}
				fmt.Printf("api key %s created: %s\n", rec.ID, key)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "key label")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func apikeyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				items, err := e.Repo.ListAPIKeys(ctx)
				if err != nil {
					return err
				}
				return printJSONOrTable(items)
			})
		},
	}
}

func apikeyDeleteCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				return e.Repo.DeleteAPIKey(ctx, id)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "key id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// --- config ---

func configCmd() *cobra.Command {
	c := &cobra.Command{Use: "config", Short: "Manage crewtrack.yml"}
	c.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default crewtrack.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	})
	c.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the workspace config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	})
	return c
}

// --- log ---

func logCmd() *cobra.Command {
	l := &cobra.Command{Use: "log", Short: "Audit log"}
	l.AddCommand(logTailCmd())
	return l
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail audit events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ *config.Config) error {
				events, err := e.Repo.LatestEvents(ctx, n, evtType, entityKind)
				if err != nil {
					return err
				}
				return printJSONOrTable(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind filter")
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine, *config.Config) error) error {
	workspace := viper.GetString("workspace")
	conn, cfg, err := app.Bootstrap(ctx, workspace)
	if err != nil {
		return err
	}
	defer conn.Close()
	e := engine.New(conn)
	return fn(ctx, e, cfg)
}

func newLogger() *zap.Logger {
	log, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
