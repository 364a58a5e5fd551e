package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chatbot/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := web.NewServer(app.Service, app.Logger, app.Config)
			if err != nil {
				return err
			}

			// Create context that listens for interrupt signals
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			port := fmt.Sprintf(":%d", app.Config.WebPort)
			app.Logger.Info("Starting chatbot web server",
				zap.String("port", port),
				zap.String("store", app.Config.StoreDriver))
			return server.Start(ctx, port)
		},
	}
}

func newAskCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question the way the endpoint would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Service.Ask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
			return nil
		},
	}
}

func newTeachCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "teach <question> <answer>",
		Short: "Add a canned answer to a question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.Service.Teach(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !m.Changed {
				fmt.Fprintf(cmd.OutOrStdout(), "%q already answers %q\n", args[1], args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q now has %d answer(s)\n", args[0], len(m.Answers))
			return nil
		},
	}
}

func newForgetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <question> <answer>",
		Short: "Remove a canned answer from a question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.Service.Forget(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			switch {
			case m.Deleted:
				fmt.Fprintf(cmd.OutOrStdout(), "%q has no answers left and was removed\n", args[0])
			case m.Changed:
				fmt.Fprintf(cmd.OutOrStdout(), "%q now has %d answer(s)\n", args[0], len(m.Answers))
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%q was not an answer to %q\n", args[1], args[0])
			}
			return nil
		},
	}
}

func newAnswersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "answers <question>",
		Short: "List the stored answers for a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := app.Service.Answers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, a := range answers {
				fmt.Fprintln(cmd.OutOrStdout(), a)
			}
			return nil
		},
	}
}

func newNotifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "notify <phone> <conversation>",
		Short: "Text a conversation to a 10-digit phone number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Service.SendConversation(cmd.Context(), args[1], args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Success!")
			return nil
		},
	}
}
