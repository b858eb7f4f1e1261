package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"intentguard/internal/collab"
	"intentguard/internal/config"
	"intentguard/internal/difftext"
	"intentguard/internal/hooks"
	"intentguard/internal/intent"
	"intentguard/internal/trace"
	"intentguard/internal/vcs"
)

var (
	runIntentID    string
	runFile        string
	runBeforePath  string
	runAfterPath   string
	runCommand     string
	runDestructive bool
	runPreviewDiff bool
	formatterCmd   string
	linterCmd      string
)

var runCmd = &cobra.Command{
	Use:   "run <tool>",
	Short: "drive a single tool invocation through the hook pipeline",
	Long: `run builds a ToolEvent from flags and executes it through the Hook
Pipeline Engine using a reference in-process executor: one concrete
implementation of the collaborator interfaces spec.md §6 leaves external to
the core, so the system is runnable end-to-end without an editor host.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}
		if runIntentID == "" {
			return fmt.Errorf("--intent is required")
		}

		engine, ledger, err := buildEngine(ws)
		if err != nil {
			return err
		}
		defer ledger.Close()

		payload := collab.ToolPayload{FilePath: runFile, Command: runCommand}
		if runDestructive {
			payload.CommandType = "destructive"
		}
		if runBeforePath != "" {
			data, err := os.ReadFile(runBeforePath)
			if err != nil {
				return fmt.Errorf("read --before file: %w", err)
			}
			payload.Before = string(data)
		}
		if runAfterPath != "" {
			data, err := os.ReadFile(runAfterPath)
			if err != nil {
				return fmt.Errorf("read --after file: %w", err)
			}
			payload.After = string(data)
		}

		if runPreviewDiff && payload.Before != "" && payload.After != "" {
			fmt.Fprint(os.Stderr, difftext.ComputeDiff(runFile, payload.Before, payload.After).String())
		}

		event := collab.ToolEvent{ToolName: args[0], IntentID: runIntentID, Payload: payload}
		result := engine.Execute(context.Background(), event, referenceExecutor(ws))

		for _, fb := range result.Feedback {
			fmt.Fprintln(os.Stderr, fb)
		}
		if !result.Success {
			return fmt.Errorf("%s", result.Reason)
		}
		fmt.Println("ok")
		return nil
	},
}

// referenceExecutor performs the tool's actual filesystem effect: when the
// payload names a file and carries after-content, it writes that content to
// disk. This is the one concrete Executor spec.md §9 says the core must
// never import directly — cmd/intentguard supplies it by injection only.
func referenceExecutor(ws string) collab.Executor {
	return func(event collab.ToolEvent) (collab.ToolResult, error) {
		if event.Payload.FilePath == "" {
			return collab.ToolResult{Success: true}, nil
		}

		abs := event.Payload.FilePath
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(ws, abs)
		}
		if event.Payload.After != "" || runAfterPath != "" {
			if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
				return collab.ToolResult{}, fmt.Errorf("create parent dir: %w", err)
			}
			if err := os.WriteFile(abs, []byte(event.Payload.After), 0644); err != nil {
				return collab.ToolResult{}, fmt.Errorf("write file: %w", err)
			}
			if logger != nil {
				logger.Info("wrote file", zap.String("path", event.Payload.FilePath), zap.String("tool", event.ToolName))
			}
		}
		return collab.ToolResult{Success: true, Message: fmt.Sprintf("wrote %s", event.Payload.FilePath)}, nil
	}
}

// terminalApprover asks the operator on stdin/stdout. An unparseable or
// empty response is treated as rejection, matching the approval gate's
// timeout-as-rejection posture.
type terminalApprover struct{}

func (terminalApprover) Confirm(message string) bool {
	fmt.Printf("approve destructive command %q? [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// execFormatterLinter shells out to a configured formatter/linter command
// template (the literal path is appended as the final argument). An empty
// template makes Run a no-op, matching the "best-effort, never fatal"
// posture of spec.md §4.6 stage 7 for an unconfigured tool.
type execFormatterLinter struct {
	formatter string
	linter    string
	timeout   time.Duration
}

func (e execFormatterLinter) Run(path string) (collab.FormatResult, error) {
	var result collab.FormatResult
	if e.formatter != "" {
		out, errOut := runTool(e.timeout, e.formatter, path)
		result.Stdout += out
		if errOut != "" {
			result.Stderr += errOut
		}
	}
	if e.linter != "" {
		out, errOut := runTool(e.timeout, e.linter, path)
		if out != "" {
			result.Stdout += "\n" + out
		}
		if errOut != "" {
			result.Stderr += "\n" + errOut
		}
	}
	return result, nil
}

func runTool(timeout time.Duration, command, path string) (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return "", ""
	}
	args := append(append([]string{}, parts[1:]...), path)
	cmd := exec.CommandContext(ctx, parts[0], args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	_ = cmd.Run()
	return stdout.String(), stderr.String()
}

func buildEngine(ws string) (*hooks.Engine, *trace.Ledger, error) {
	cfg, err := config.Load(ws)
	if err != nil {
		return nil, nil, err
	}

	oracle := vcs.NewGitOracle(ws)
	store := intent.NewStore(ws)
	machine := intent.NewMachine(store)

	ledger, err := trace.Open(ws, oracle)
	if err != nil {
		return nil, nil, err
	}

	syncTracker, err := vcs.NewSyncTracker(ws, oracle)
	if err != nil {
		// Missing/unwatchable workspace root degrades to no concurrency
		// cross-check rather than failing the whole command.
		if logger != nil {
			logger.Warn("sync tracker unavailable, concurrency cross-check disabled", zap.String("workspace", ws), zap.Error(err))
		}
		syncTracker = nil
	}

	engine := hooks.NewEngine(hooks.EngineConfig{
		WorkspaceRoot: ws,
		Store:         store,
		Machine:       machine,
		Ledger:        ledger,
		SyncTracker:   syncTracker,
		Limits: hooks.Limits{
			MaxOwnedScope:         cfg.Limits.MaxOwnedScope,
			MaxConstraints:        cfg.Limits.MaxConstraints,
			MaxAcceptanceCriteria: cfg.Limits.MaxAcceptanceCriteria,
		},
		Formatter:          execFormatterLinter{formatter: formatterCmd, linter: linterCmd, timeout: 10 * time.Second},
		Approver:           terminalApprover{},
		ConcurrencyTimeout: time.Duration(cfg.Hooks.ConcurrencyLockTimeoutMillis) * time.Millisecond,
	})

	return engine, ledger, nil
}

func init() {
	runCmd.Flags().StringVar(&runIntentID, "intent", "", "intent id this call is anchored to")
	runCmd.Flags().StringVar(&runFile, "file", "", "target file path, relative to the workspace root")
	runCmd.Flags().StringVar(&runBeforePath, "before", "", "path to a file holding the before-content")
	runCmd.Flags().StringVar(&runAfterPath, "after", "", "path to a file holding the after-content")
	runCmd.Flags().StringVar(&runCommand, "command", "", "rendered command string, shown to the approval prompter")
	runCmd.Flags().BoolVar(&runDestructive, "destructive", false, "mark commandType as destructive, requiring approval")
	runCmd.Flags().BoolVar(&runPreviewDiff, "preview-diff", false, "print a line diff of --before vs --after to stderr before executing")
	runCmd.Flags().StringVar(&formatterCmd, "formatter", "", "external formatter command template")
	runCmd.Flags().StringVar(&linterCmd, "linter", "", "external linter command template")
}
