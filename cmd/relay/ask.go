package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
	"github.com/CerealNotFound/function-calling-server/dispatch"
)

var (
	colorAccent = color.RGB(240, 150, 0)
	colorFaint  = color.New(color.Faint)
	colorOK     = color.New(color.FgGreen)
	colorFail   = color.New(color.FgRed)
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Run prompts from the terminal",
	Long: `Runs one dispatch cycle for the given prompt and prints the reply and action outcomes.
Without a prompt argument, reads prompts line by line from stdin within one conversation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		r, err := newRelay(ctx, cmd, cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		conversation, _ := cmd.Flags().GetString("conversation")

		if len(args) == 1 {
			result, err := r.Handle(ctx, conversation, args[0])
			if err != nil {
				return err
			}
			printResult(out, result)
			return nil
		}

		reader := bufio.NewReader(cmd.InOrStdin())
		for {
			fmt.Fprint(out, colorAccent.Sprint("> "))
			line, err := reader.ReadString('\n')
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}

			prompt := strings.TrimSpace(line)
			if prompt == "" {
				continue
			}
			if prompt == "exit" || prompt == "quit" {
				return nil
			}

			result, err := r.Handle(ctx, conversation, prompt)
			if err != nil {
				fmt.Fprintln(out, colorFail.Sprintf("error: %v", err))
				var me *dispatch.ModelError
				if errors.As(err, &me) {
					conversation = me.ConversationID
					continue
				}
				return err
			}
			conversation = result.ConversationID
			printResult(out, result)
		}
	},
}

func printResult(w io.Writer, result *dispatch.Result) {
	for _, o := range result.Actions {
		fmt.Fprintln(w, colorAccent.Sprint("● ")+color.New(color.Bold).Sprint(o.Action))
		fmt.Fprintln(w, "  "+colorFaint.Sprint("└ ")+outcomeLine(o))
	}
	fmt.Fprintln(w, colorAccent.Sprint("● ")+color.New(color.Bold).Sprint("Relay"))
	fmt.Fprintln(w, result.Reply)
	fmt.Fprintln(w, colorFaint.Sprintf("conversation %s", result.ConversationID))
}

func outcomeLine(o protocol.Outcome) string {
	if o.Succeeded() {
		return colorOK.Sprint("success ") + colorFaint.Sprint(string(o.Payload))
	}
	if o.Error == nil {
		return colorFail.Sprint("failure")
	}
	detail := o.Error.Detail
	if o.Error.Field != "" {
		detail = o.Error.Field + ": " + detail
	}
	return colorFail.Sprint(string(o.Error.Kind)+" ") + colorFaint.Sprint(detail)
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().String("conversation", "", "Continue an existing conversation id")
}
