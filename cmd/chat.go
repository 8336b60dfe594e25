package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"recletter/generator"
	"recletter/orchestrator"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Generate a letter and refine it interactively",
	Long: `Generate a letter, then refine it turn by turn.

Commands inside the session:
  /show        print the current letter
  /copy        copy the current letter to the clipboard
  /transcript  print the conversation so far
  /quit        leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readGenerationInput()
		if err != nil {
			return err
		}
		orch, err := buildOrchestrator(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
		doc, err := orch.Generate(ctx, in)
		cancel()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printDocument(out, doc)
		fmt.Fprintf(out, "\n%s\n", generator.GreetingText)

		return chatLoop(cmd.Context(), orch, cmd.InOrStdin(), out)
	},
}

func chatLoop(ctx context.Context, orch *orchestrator.Orchestrator, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/show":
			if doc, ok := orch.Document(); ok {
				fmt.Fprintln(out, doc.PrimaryText)
			}
			continue
		case "/copy":
			doc, _ := orch.Document()
			if err := clipboard.WriteAll(doc.PrimaryText); err != nil {
				fmt.Fprintf(out, "copy failed: %v\n", err)
			} else {
				fmt.Fprintln(out, "letter copied to clipboard")
			}
			continue
		case "/transcript":
			for _, t := range orch.Snapshot().Transcript {
				fmt.Fprintf(out, "[%s] %s\n", t.Speaker, t.Text)
			}
			continue
		}

		turnCtx, cancel := context.WithTimeout(ctx, requestTimeout())
		res, err := orch.Refine(turnCtx, line)
		cancel()
		switch {
		case errors.Is(err, generator.ErrRefinementFailure):
			fmt.Fprintln(out, generator.ErrorReply)
		case errors.Is(err, generator.ErrValidation):
			fmt.Fprintln(out, err)
		case err != nil:
			return err
		default:
			fmt.Fprintln(out, res.Reply)
			if res.Applied {
				fmt.Fprintln(out, "[letter updated]")
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
	addInputFlags(chatCmd)
}
