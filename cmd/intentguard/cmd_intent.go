package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"intentguard/internal/intent"
)

var intentCmd = &cobra.Command{
	Use:   "intent",
	Short: "inspect and mutate the intent ledger",
}

var intentListCmd = &cobra.Command{
	Use:   "list",
	Short: "list every intent in the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}
		ledger, err := intent.NewStore(ws).LoadAll()
		if err != nil {
			return err
		}

		for _, it := range ledger.Intents {
			active := " "
			if it.ID == ledger.ActiveIntent {
				active = "*"
			}
			fmt.Printf("%s %-10s %-12s %s\n", active, it.ID, it.Status, it.Description)
		}
		return nil
	},
}

var intentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "show one intent's full record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}
		it, err := intent.NewStore(ws).LoadOne(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("id:          %s\n", it.ID)
		fmt.Printf("description: %s\n", it.Description)
		fmt.Printf("status:      %s\n", it.Status)
		fmt.Printf("owned_scope: %v\n", it.OwnedScope)
		fmt.Printf("constraints: %v\n", it.Constraints)
		fmt.Printf("acceptance:  %v\n", it.AcceptanceCriteria)
		if it.SpecRef != "" {
			fmt.Printf("spec_ref:    %s\n", it.SpecRef)
		}
		return nil
	},
}

var (
	createDescription string
	createScope        []string
	createAcceptance   []string
)

var intentCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "append a new PENDING intent to the ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}
		id := args[0]
		if len(createScope) == 0 {
			return fmt.Errorf("intent %q requires at least one --scope pattern", id)
		}

		store := intent.NewStore(ws)
		_, err = store.Update(func(ledger *intent.Ledger) error {
			if ledger.Find(id) != nil {
				return fmt.Errorf("intent %q already exists", id)
			}
			ledger.Intents = append(ledger.Intents, intent.Intent{
				ID:                 id,
				Description:        createDescription,
				Status:             intent.Pending,
				OwnedScope:         createScope,
				Constraints:        map[string]string{},
				AcceptanceCriteria: createAcceptance,
			})
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Printf("created %s (PENDING)\n", id)
		return nil
	},
}

var transitionAdmin bool

var intentTransitionCmd = &cobra.Command{
	Use:   "transition <id> <target>",
	Short: "transition an intent to a new status",
	Long: `Target is one of PENDING, IN_PROGRESS, COMPLETED, LOCKED. The
LOCKED -> IN_PROGRESS administrative override requires --admin.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}
		id, target := args[0], intent.Status(args[1])
		if !intent.IsLegal(target) {
			return fmt.Errorf("%q is not a legal status", args[1])
		}

		machine := intent.NewMachine(intent.NewStore(ws))
		if err := machine.Transition(id, target, transitionAdmin); err != nil {
			if logger != nil {
				logger.Warn("intent transition rejected", zap.String("id", id), zap.String("target", string(target)), zap.Error(err))
			}
			return err
		}
		if logger != nil {
			logger.Info("intent transitioned", zap.String("id", id), zap.String("target", string(target)), zap.Bool("admin", transitionAdmin))
		}

		fmt.Printf("%s -> %s\n", id, target)
		return nil
	},
}

func init() {
	intentCreateCmd.Flags().StringVar(&createDescription, "description", "", "human-readable description")
	intentCreateCmd.Flags().StringArrayVar(&createScope, "scope", nil, "owned_scope glob pattern (repeatable)")
	intentCreateCmd.Flags().StringArrayVar(&createAcceptance, "acceptance", nil, "acceptance criterion (repeatable)")

	intentTransitionCmd.Flags().BoolVar(&transitionAdmin, "admin", false, "authorize the LOCKED -> IN_PROGRESS administrative override")

	intentCmd.AddCommand(intentListCmd, intentShowCmd, intentCreateCmd, intentTransitionCmd)
}
