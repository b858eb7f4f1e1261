package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"intentguard/internal/trace"
)

var traceFollow bool

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "inspect the append-only audit ledger",
}

var traceTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "print the trace ledger, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}

		path := filepath.Join(ws, trace.FileName)
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			fmt.Println("(no trace entries yet)")
			return nil
		}
		if err != nil {
			return err
		}
		defer f.Close()

		var lines []string
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if line != "" {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}

		for i := len(lines) - 1; i >= 0; i-- {
			printTraceLine(lines[i])
		}

		if traceFollow {
			return followTrace(f)
		}
		return nil
	},
}

// followTrace polls the already-open file handle for newly appended lines,
// printing each as it lands (oldest-first, since new entries only ever
// arrive at the end of an append-only ledger).
func followTrace(f *os.File) error {
	for {
		// A bufio.Scanner stops for good at EOF, so each poll starts a fresh
		// one from the file's current offset.
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				printTraceLine(line)
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func printTraceLine(line string) {
	var entry trace.Entry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		fmt.Println(line)
		return
	}

	fmt.Printf("%s  %s  intent=%s  files=%d\n", entry.Timestamp, entry.ID, entry.IntentID, len(entry.Files))
	for _, f := range entry.Files {
		fmt.Printf("  %s  %v\n", f.RelativePath, f.MutationClasses)
	}
}

func init() {
	traceTailCmd.Flags().BoolVarP(&traceFollow, "follow", "f", false, "keep printing new entries as they're appended")
	traceCmd.AddCommand(traceTailCmd)
}
