package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/interview-clips/internal/analysis"
	"github.com/nguyentantai21042004/interview-clips/pkg/fileutil"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	var question int

	cmd := &cobra.Command{
		Use:   "analyze <clip>",
		Short: "Transcribe and summarize one clip, optionally recording it on a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if sessionID != "" && question < 1 {
				return fmt.Errorf("--question is required with --session")
			}

			// the pipeline consumes its input, so work on a copy
			staged, err := fileutil.CopyToDir(args[0], a.cfg.Paths.Temp, "cli")
			if err != nil {
				return err
			}

			req := analysis.ClipRequest{ClipPath: staged}
			if sessionID != "" {
				req.SessionID = sessionID
				req.Question = question
				req.Token = a.cfg.Auth.Tokens[0]
			}

			res, err := a.analysis.AnalyzeClip(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Transcript:")
			fmt.Fprintln(out, res.Transcript)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Summary:")
			fmt.Fprintln(out, res.Summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Record the result on this session")
	cmd.Flags().IntVarP(&question, "question", "q", 0, "Question index for --session")
	return cmd
}
