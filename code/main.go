package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"

	"github.com/Voltaic314/DeskSweep/code/collab"
	"github.com/Voltaic314/DeskSweep/code/config"
	"github.com/Voltaic314/DeskSweep/code/db"
	"github.com/Voltaic314/DeskSweep/code/db/tables"
	"github.com/Voltaic314/DeskSweep/code/execution"
	"github.com/Voltaic314/DeskSweep/code/journal"
	"github.com/Voltaic314/DeskSweep/code/logging"
	planpkg "github.com/Voltaic314/DeskSweep/code/plan"
	"github.com/Voltaic314/DeskSweep/code/tree"
)

// Exit codes: 0 committed/success, 1 scan/parse/validation failure,
// 2 execution failure with full auto-rollback (safe to retry),
// 3 partial rollback (needs manual intervention).
const (
	exitOK             = 0
	exitRejected       = 1
	exitRolledBack     = 2
	exitNeedsAttention = 3
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	app := &cli.App{
		Name:  "desksweep",
		Usage: "reorganize a messy directory from an externally-authored plan, with full rollback",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Required: true, Usage: "target directory to reorganize"},
			&cli.StringFlag{Name: "plan-file", Required: true, Usage: "path to the .plan file"},
			&cli.StringFlag{Name: "mode", Required: true, Usage: "plan, execute, or rollback"},
			&cli.StringFlag{Name: "config", Usage: "optional config JSON (case_sensitive, auto_mkdir, ...)"},
			&cli.BoolFlag{Name: "yes", Usage: "commit without asking (execute mode)"},
			&cli.BoolFlag{Name: "send", Usage: "plan mode: send the prompt to Claude and write the returned plan"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress log output"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(errStyle.Render("❌ " + err.Error()))
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(exitRejected)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("load config: %v", err), exitRejected)
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogBatchSize, time.Duration(cfg.LogFlushSeconds)*time.Second, c.Bool("quiet"))

	rootPath, err := filepath.Abs(c.String("root"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("resolve root: %v", err), exitRejected)
	}

	auditDB := openAuditDB(rootPath, cfg)
	if auditDB != nil {
		defer auditDB.Close()
		defer logging.GlobalLogger.Stop()
	}

	switch c.String("mode") {
	case "plan":
		return runPlanMode(c, rootPath, cfg)
	case "execute":
		return runExecuteMode(c, rootPath, cfg)
	case "rollback":
		return runRollbackMode(c, rootPath, cfg)
	default:
		return cli.Exit(fmt.Sprintf("unknown mode %q (want plan, execute, or rollback)", c.String("mode")), exitRejected)
	}
}

// openAuditDB attaches the DuckDB audit log under the root's state dir.
// Audit logging is best-effort; a broken audit DB never blocks a run.
func openAuditDB(rootPath string, cfg config.Config) *db.DB {
	stateDir := filepath.Join(rootPath, cfg.StateDirName)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		fmt.Println(warnStyle.Render("⚠️  audit db unavailable: " + err.Error()))
		return nil
	}
	auditDB, err := db.NewDB(filepath.Join(stateDir, cfg.AuditDBName))
	if err != nil {
		fmt.Println(warnStyle.Render("⚠️  audit db unavailable: " + err.Error()))
		return nil
	}
	if err := (tables.AuditLogTable{}).Init(auditDB); err != nil {
		fmt.Println(warnStyle.Render("⚠️  audit db unavailable: " + err.Error()))
		auditDB.Close()
		return nil
	}
	logging.GlobalLogger.RegisterDB(auditDB)
	return auditDB
}

func runPlanMode(c *cli.Context, rootPath string, cfg config.Config) error {
	snap, err := tree.Scan(rootPath, cfg.StateDirName)
	if err != nil {
		return cli.Exit(err.Error(), exitRejected)
	}

	prompt := collab.BuildPrompt(rootPath, snap.Listing())
	planFile := c.String("plan-file")
	artifact, err := collab.WritePromptArtifact(planFile, prompt)
	if err != nil {
		return cli.Exit(fmt.Sprintf("write prompt: %v", err), exitRejected)
	}
	fmt.Println(okStyle.Render("📝 Prompt saved to " + artifact))

	if !c.Bool("send") {
		fmt.Println("Hand the prompt to your plan author, save the reply as " + planFile + ", then run --mode execute.")
		return nil
	}

	document, err := collab.RequestPlan(context.Background(), prompt)
	if err != nil {
		return cli.Exit(fmt.Sprintf("request plan: %v", err), exitRejected)
	}
	if err := os.WriteFile(planFile, []byte(document), 0o644); err != nil {
		return cli.Exit(fmt.Sprintf("write plan: %v", err), exitRejected)
	}
	fmt.Println(okStyle.Render("🤖 Plan saved to " + planFile + ". Review it, then run --mode execute."))
	return nil
}

func runExecuteMode(c *cli.Context, rootPath string, cfg config.Config) error {
	document, err := os.ReadFile(c.String("plan-file"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("read plan file: %v", err), exitRejected)
	}

	stateDir := filepath.Join(rootPath, cfg.StateDirName)
	planID := journal.PlanID(string(document))
	if journal.Exists(stateDir, planID) {
		return cli.Exit("a journal for this plan already exists (interrupted run?); run --mode rollback first", exitNeedsAttention)
	}

	snap, err := tree.Scan(rootPath, cfg.StateDirName)
	if err != nil {
		return cli.Exit(err.Error(), exitRejected)
	}

	ops, err := planpkg.Parse(string(document))
	if err != nil {
		return cli.Exit(err.Error(), exitRejected)
	}
	validated, err := planpkg.Validate(ops, snap.Root, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitRejected)
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("✅ Plan validated: %d operations", len(validated))))

	engine, err := execution.NewEngine(rootPath, string(document), cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitRejected)
	}
	logging.GlobalLogger.BindSession(engine.Session().ID)

	if err := engine.Execute(validated); err != nil {
		if execErr, ok := err.(*execution.ExecutionError); ok {
			if execErr.RollbackComplete {
				return cli.Exit(execErr.Error(), exitRolledBack)
			}
			return cli.Exit(execErr.Error(), exitNeedsAttention)
		}
		return cli.Exit(err.Error(), exitRejected)
	}

	reportDiff(rootPath, cfg, snap)

	if c.Bool("yes") || confirm("Plan executed. Confirm changes? (y/n): ") {
		if err := engine.Commit(); err != nil {
			return cli.Exit(err.Error(), exitNeedsAttention)
		}
		fmt.Println(okStyle.Render("✅ Changes have been confirmed."))
		return nil
	}

	if err := engine.Rollback(); err != nil {
		return cli.Exit(err.Error(), exitNeedsAttention)
	}
	fmt.Println(okStyle.Render("↩️  Changes rolled back."))
	return nil
}

func runRollbackMode(c *cli.Context, rootPath string, cfg config.Config) error {
	document, err := os.ReadFile(c.String("plan-file"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("read plan file: %v", err), exitRejected)
	}

	if err := execution.ResumeRollback(rootPath, string(document), cfg); err != nil {
		if _, ok := err.(*execution.RollbackError); ok {
			return cli.Exit(err.Error(), exitNeedsAttention)
		}
		return cli.Exit(err.Error(), exitRejected)
	}
	fmt.Println(okStyle.Render("↩️  Rollback complete."))
	return nil
}

// reportDiff rescans after execution and shows what changed, so the
// user confirms against facts rather than intentions.
func reportDiff(rootPath string, cfg config.Config, before *tree.Snapshot) {
	after, err := tree.Scan(rootPath, cfg.StateDirName)
	if err != nil {
		fmt.Println(warnStyle.Render("⚠️  post-execution scan failed: " + err.Error()))
		return
	}
	removed, added := tree.DiffPaths(before.Root, after.Root)
	fmt.Printf("Applied: %d paths removed, %d paths added\n", len(removed), len(added))
}

func confirm(question string) bool {
	fmt.Print(question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(answer)) == "y"
}
